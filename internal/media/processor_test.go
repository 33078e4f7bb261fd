package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mvhdV0 builds a minimal moov/mvhd container with a version-0 movie header.
func mvhdV0(timescale, duration uint32) []byte {
	payload := make([]byte, 100)
	// version + flags are zero
	binary.BigEndian.PutUint32(payload[12:16], timescale)
	binary.BigEndian.PutUint32(payload[16:20], duration)
	return wrapBoxes(payload)
}

func mvhdV1(timescale uint32, duration uint64) []byte {
	payload := make([]byte, 112)
	payload[0] = 1
	binary.BigEndian.PutUint32(payload[20:24], timescale)
	binary.BigEndian.PutUint64(payload[24:32], duration)
	return wrapBoxes(payload)
}

func wrapBoxes(mvhdPayload []byte) []byte {
	mvhd := make([]byte, 8+len(mvhdPayload))
	binary.BigEndian.PutUint32(mvhd[0:4], uint32(len(mvhd)))
	copy(mvhd[4:8], "mvhd")
	copy(mvhd[8:], mvhdPayload)

	moov := make([]byte, 8+len(mvhd))
	binary.BigEndian.PutUint32(moov[0:4], uint32(len(moov)))
	copy(moov[4:8], "moov")
	copy(moov[8:], mvhd)
	return moov
}

func TestDurationVersion0(t *testing.T) {
	p := NewVideoProcessor()
	d, err := p.Duration(mvhdV0(1000, 12500))
	require.NoError(t, err)
	assert.Equal(t, 12500*time.Millisecond, d)
}

func TestDurationVersion1(t *testing.T) {
	p := NewVideoProcessor()
	d, err := p.Duration(mvhdV1(600, 1800))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)
}

func TestDurationSkipsLeadingBoxes(t *testing.T) {
	ftyp := make([]byte, 16)
	binary.BigEndian.PutUint32(ftyp[0:4], 16)
	copy(ftyp[4:8], "ftyp")

	p := NewVideoProcessor()
	d, err := p.Duration(append(ftyp, mvhdV0(1000, 5000)...))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
}

func TestDurationRejectsGarbage(t *testing.T) {
	p := NewVideoProcessor()
	_, err := p.Duration([]byte("not an mp4 file at all"))
	assert.Error(t, err)
}

func TestDurationRejectsZeroTimescale(t *testing.T) {
	p := NewVideoProcessor()
	_, err := p.Duration(mvhdV0(0, 5000))
	assert.Error(t, err)
}

func TestImageProcessorAcceptsDecodableImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	p := NewImageProcessor()
	assert.NoError(t, p.ValidateForPlatform(buf.Bytes(), "instagram"))

	out, err := p.ProcessForPlatform(context.Background(), buf.Bytes(), "instagram")
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), out)
}

func TestImageProcessorRejectsNonImage(t *testing.T) {
	p := NewImageProcessor()
	assert.Error(t, p.ValidateForPlatform([]byte("plainly not an image"), "instagram"))
}
