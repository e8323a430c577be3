package generator

import (
	"errors"
	"fmt"
)

// TransportError は通信層の失敗分類です。
// タイムアウト・非2xx応答・不正なボディはすべてこの型で表面化され、
// 黙殺されることはありません。リトライするかどうかの判断は
// この層では行わず、1つ上の層（pipeline）に委ねます。
type TransportError struct {
	Op         string // "generate" / "fetch" など失敗した操作
	StatusCode int    // HTTP 以外の失敗では 0
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError は err が TransportError かどうかを判定します。
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
