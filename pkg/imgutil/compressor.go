// Package imgutil は教材画像の再圧縮ユーティリティを提供します。
// 生成プロバイダが返すPNGは印刷用教材としては過大になりがちなので、
// 閾値を超えたペイロードだけをJPEGへ落として扱いやすくします。
package imgutil

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ShrinkOversized は閾値を超えたデータだけをJPEGへ再圧縮します。
// 再圧縮で小さくならなかった場合やデコードできない場合は元データを返します。
// 戻り値の bool は再圧縮が適用されたかどうかです。
func ShrinkOversized(data []byte, thresholdBytes int, quality int) ([]byte, bool) {
	if len(data) <= thresholdBytes {
		return data, false
	}
	compressed, err := CompressToJPEG(data, quality)
	if err != nil || len(compressed) >= len(data) {
		return data, false
	}
	return compressed, true
}
