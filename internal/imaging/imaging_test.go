package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// testFrame renders a solid-color frame of the given size as JPEG.
func testFrame(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	data, err := EncodeJPEG(img)
	if err != nil {
		t.Fatalf("encoding test frame: %v", err)
	}
	return data
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestCrop(t *testing.T) {
	frame := testFrame(t, 640, 480, color.White)

	face, err := Crop(frame, 100, 300, 250, 200) // top, right, bottom, left
	if err != nil {
		t.Fatalf("crop failed: %v", err)
	}
	w, h := decodeSize(t, face)
	if w != 100 || h != 150 {
		t.Errorf("expected 100x150 crop, got %dx%d", w, h)
	}
}

func TestCropClampsToFrame(t *testing.T) {
	frame := testFrame(t, 100, 100, color.White)

	face, err := Crop(frame, -10, 150, 150, 50)
	if err != nil {
		t.Fatalf("crop failed: %v", err)
	}
	w, h := decodeSize(t, face)
	if w != 50 || h != 100 {
		t.Errorf("expected clamped 50x100 crop, got %dx%d", w, h)
	}
}

func TestCropOutsideFrame(t *testing.T) {
	frame := testFrame(t, 100, 100, color.White)
	if _, err := Crop(frame, 200, 300, 300, 200); err == nil {
		t.Error("expected error for region outside the frame")
	}
}

func TestCropBadData(t *testing.T) {
	if _, err := Crop([]byte("not an image"), 0, 10, 10, 0); err == nil {
		t.Error("expected decode error")
	}
}

func TestResizeShrinksLargeImages(t *testing.T) {
	frame := testFrame(t, 800, 400, color.White)

	out, err := Resize(frame, 200)
	if err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	w, h := decodeSize(t, out)
	if w != 200 || h != 100 {
		t.Errorf("expected 200x100, got %dx%d", w, h)
	}
}

func TestResizeKeepsSmallImages(t *testing.T) {
	frame := testFrame(t, 50, 40, color.White)

	out, err := Resize(frame, 200)
	if err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	w, h := decodeSize(t, out)
	if w != 50 || h != 40 {
		t.Errorf("expected original 50x40, got %dx%d", w, h)
	}
}
