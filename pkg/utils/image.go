// Подготовка изображений для vision моделей.

package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // Регистрируем GIF декодер
	"image/jpeg"
	_ "image/png" // Регистрируем PNG декодер

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp" // Регистрируем BMP декодер
)

// ResizeImage ресайзит изображение до указанной ширины, сохраняя пропорции.
//
// Параметры:
//   - data: байты исходного изображения (JPEG, PNG, GIF, BMP)
//   - maxWidth: целевая ширина в пикселях. Если 0 или больше исходной ширины - ресайз не применяется.
//   - quality: качество JPEG при кодировании (1-100). Рекомендуется 85.
//
// Возвращает байты JPEG изображения (для vision модели и base64).
func ResizeImage(data []byte, maxWidth int, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	originalBounds := img.Bounds()
	originalWidth := originalBounds.Dx()

	if maxWidth <= 0 || originalWidth <= maxWidth {
		// Ресайз не нужен, но конвертируем в JPEG для консистентности
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode to jpeg: %w", err)
		}
		return buf.Bytes(), nil
	}

	aspectRatio := float64(originalBounds.Dy()) / float64(originalWidth)
	newHeight := uint(float64(maxWidth) * aspectRatio)

	// Lanczos3 - качественный алгоритм
	resized := resize.Resize(uint(maxWidth), newHeight, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}

	return buf.Bytes(), nil
}

// JPEGDataURI кодирует JPEG байты в data URI для передачи в vision API.
func JPEGDataURI(jpegData []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
}
