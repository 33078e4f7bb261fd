package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"
)

// ImageProcessor adapts images to a platform's requirements. The default
// implementation only validates; real resizing runs in an external transcoder.
type ImageProcessor interface {
	ValidateForPlatform(buf []byte, platform string) error
	ProcessForPlatform(ctx context.Context, buf []byte, platform string) ([]byte, error)
}

// VideoProcessor adapts videos to a platform's requirements and measures
// their duration.
type VideoProcessor interface {
	ProcessForPlatform(ctx context.Context, buf []byte, platform string) ([]byte, error)
	ProcessWithCover(ctx context.Context, buf []byte, coverURL string) ([]byte, error)
	Duration(buf []byte) (time.Duration, error)
}

type stdImageProcessor struct{}

func NewImageProcessor() ImageProcessor {
	return stdImageProcessor{}
}

func (stdImageProcessor) ValidateForPlatform(buf []byte, platform string) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("undecodable image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return errors.New("image has zero dimensions")
	}
	return nil
}

func (p stdImageProcessor) ProcessForPlatform(ctx context.Context, buf []byte, platform string) ([]byte, error) {
	if err := p.ValidateForPlatform(buf, platform); err != nil {
		return nil, err
	}
	return buf, nil
}

type mp4VideoProcessor struct{}

func NewVideoProcessor() VideoProcessor {
	return mp4VideoProcessor{}
}

func (mp4VideoProcessor) ProcessForPlatform(ctx context.Context, buf []byte, platform string) ([]byte, error) {
	return buf, nil
}

func (mp4VideoProcessor) ProcessWithCover(ctx context.Context, buf []byte, coverURL string) ([]byte, error) {
	return buf, nil
}

// Duration reads the mvhd box of an MP4/MOV container.
func (mp4VideoProcessor) Duration(buf []byte) (time.Duration, error) {
	mvhd := findBox(buf, "moov", "mvhd")
	if mvhd == nil || len(mvhd) < 4 {
		return 0, errors.New("no mvhd box found")
	}

	version := mvhd[0]
	switch version {
	case 0:
		if len(mvhd) < 4+8+4+4 {
			return 0, errors.New("truncated mvhd box")
		}
		timescale := binary.BigEndian.Uint32(mvhd[12:16])
		duration := binary.BigEndian.Uint32(mvhd[16:20])
		if timescale == 0 {
			return 0, errors.New("mvhd timescale is zero")
		}
		return time.Duration(float64(duration) / float64(timescale) * float64(time.Second)), nil
	case 1:
		if len(mvhd) < 4+16+4+8 {
			return 0, errors.New("truncated mvhd box")
		}
		timescale := binary.BigEndian.Uint32(mvhd[20:24])
		duration := binary.BigEndian.Uint64(mvhd[24:32])
		if timescale == 0 {
			return 0, errors.New("mvhd timescale is zero")
		}
		return time.Duration(float64(duration) / float64(timescale) * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("unsupported mvhd version %d", version)
	}
}

// findBox walks top-level MP4 boxes following the given path and returns the
// payload of the final box.
func findBox(buf []byte, path ...string) []byte {
	for _, name := range path {
		found := false
		for len(buf) >= 8 {
			size := binary.BigEndian.Uint32(buf[0:4])
			boxType := string(buf[4:8])
			if size < 8 || uint32(len(buf)) < size {
				return nil
			}
			if boxType == name {
				buf = buf[8:size]
				found = true
				break
			}
			buf = buf[size:]
		}
		if !found {
			return nil
		}
	}
	return buf
}
