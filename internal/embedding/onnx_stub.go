//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

// ONNXEmbedder placeholder for builds without CGO; onnx.go holds the real one.
type ONNXEmbedder struct{}

// NewONNXEmbedder always fails without CGO.
func NewONNXEmbedder(_ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, errors.New("onnx embedder needs CGO; build with CGO_ENABLED=1 and onnxruntime installed")
}

// Embed is unreachable: NewONNXEmbedder never returns a usable value without CGO.
func (e *ONNXEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("onnx embedder needs CGO; build with CGO_ENABLED=1 and onnxruntime installed")
}

// EmbedBatch is unreachable: NewONNXEmbedder never returns a usable value without CGO.
func (e *ONNXEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errors.New("onnx embedder needs CGO; build with CGO_ENABLED=1 and onnxruntime installed")
}

// Dimensions is unreachable: NewONNXEmbedder never returns a usable value without CGO.
func (e *ONNXEmbedder) Dimensions() int {
	return 0
}

// Close is unreachable: NewONNXEmbedder never returns a usable value without CGO.
func (e *ONNXEmbedder) Close() error {
	return nil
}
