package imgx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // 注册 GIF 解码器（源站个别 sprite 不是 PNG）
	_ "image/jpeg" // 注册 JPEG 解码器
	"image/png"
	"os"

	"github.com/John-Robertt/spritekit/internal/infra/fsx"
)

// DecodeError 表示单个文件无法解码为图片（逐文件错误，调用方记录后跳过）。
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("解码图片失败：%q：%v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError 表示单个文件编码或写入失败（逐文件错误，调用方记录后跳过）。
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("写入图片失败：%q：%v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// IsDecodeError 报告 err 链中是否包含 *DecodeError。
func IsDecodeError(err error) bool {
	var e *DecodeError
	return errors.As(err, &e)
}

// IsEncodeError 报告 err 链中是否包含 *EncodeError。
func IsEncodeError(err error) bool {
	var e *EncodeError
	return errors.As(err, &e)
}

// DecodeBytes 按原始颜色模型解码（调色板图保持为 *image.Paletted）。
// name 只用于错误信息。
func DecodeBytes(name string, b []byte) (image.Image, error) {
	if len(b) == 0 {
		return nil, &DecodeError{Path: name, Err: errors.New("内容为空")}
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, &DecodeError{Path: name, Err: err}
	}
	if r := img.Bounds(); r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, &DecodeError{Path: name, Err: errors.New("图片尺寸无效")}
	}
	return img, nil
}

// DecodeRaw 读取 path 并按原始颜色模型解码（用于判断是否调色板图）。
func DecodeRaw(path string) (image.Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return DecodeBytes(path, b)
}

// Decode 读取 path 并统一为 *image.NRGBA（颜色平面 + 不透明度平面）。
// 没有 alpha 的源图会被升级为 alpha=255，而不是丢掉 alpha。
func Decode(path string) (*image.NRGBA, error) {
	img, err := DecodeRaw(path)
	if err != nil {
		return nil, err
	}
	return ToNRGBA(img), nil
}

// IsPaletted 报告 img 是否为调色板（索引色）图。
func IsPaletted(img image.Image) bool {
	_, ok := img.(*image.Paletted)
	return ok
}

// ToNRGBA 把任意图片转换为原点在 (0,0) 的 *image.NRGBA。
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// EncodePNG 把 img 编码为 PNG（保持 img 的颜色模型，调色板图仍输出调色板 PNG）。
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("图片为空")
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WritePNG 编码 img 并原子写入 path（覆盖同名文件）。
func WritePNG(path string, img image.Image) error {
	b, err := EncodePNG(img)
	if err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	if err := fsx.WriteFileAtomic(path, b); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}
