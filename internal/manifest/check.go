package manifest

import (
	"errors"
	"fmt"
	"sort"

	"github.com/born-ml/peek/internal/logger"
	"github.com/born-ml/peek/internal/safetensors"
)

// Program arguments bound by the caller rather than declared as buffers.
var reservedArgs = map[string]bool{
	"input":   true,
	"outputs": true,
}

// ProblemKind classifies a manifest/container disagreement.
type ProblemKind string

const (
	MissingTensor ProblemKind = "missing_tensor"
	SizeMismatch  ProblemKind = "size_mismatch"
	UndeclaredArg ProblemKind = "undeclared_arg"
)

// Problem is one finding of Check.
type Problem struct {
	Kind   ProblemKind
	Buffer string
	Tensor string
	Detail string
}

func (p Problem) String() string {
	switch {
	case p.Tensor != "":
		return fmt.Sprintf("%s: buffer %s (tensor %s): %s", p.Kind, p.Buffer, p.Tensor, p.Detail)
	default:
		return fmt.Sprintf("%s: %s: %s", p.Kind, p.Buffer, p.Detail)
	}
}

// Check reports weight buffers whose tensor is missing from f or whose byte
// size differs, and statement args naming no declared buffer. Problems are
// ordered by buffer key, then by statement order.
func Check(m *Model, f *safetensors.File) ([]Problem, error) {
	if m == nil || f == nil {
		return nil, errors.New("check: nil manifest or file")
	}

	var problems []Problem
	for _, key := range m.Weights() {
		buf := m.Buffers[key]
		info, err := f.TensorInfo(buf.Name)
		if errors.Is(err, safetensors.ErrTensorNotFound) {
			problems = append(problems, Problem{
				Kind: MissingTensor, Buffer: key, Tensor: buf.Name,
				Detail: "not in container",
			})
			continue
		}
		if err != nil {
			return nil, err
		}
		if got := uint64(info.ByteLen()); got != buf.Size { //nolint:gosec // G115: offsets are validated non-negative.
			problems = append(problems, Problem{
				Kind: SizeMismatch, Buffer: key, Tensor: buf.Name,
				Detail: fmt.Sprintf("manifest says %d bytes, container has %d", buf.Size, got),
			})
		}
	}

	seen := make(map[string]bool)
	for i, st := range m.Statements {
		for _, arg := range st.Args {
			if reservedArgs[arg] || seen[arg] {
				continue
			}
			if _, ok := m.Buffers[arg]; !ok {
				seen[arg] = true
				problems = append(problems, Problem{
					Kind: UndeclaredArg, Buffer: arg,
					Detail: fmt.Sprintf("statement %d (%s)", i, st.Kernel),
				})
			}
		}
	}

	logger.Log.Debug("manifest checked",
		"buffers", len(m.Buffers),
		"statements", len(m.Statements),
		"problems", len(problems),
	)
	return problems, nil
}

// Unused returns container tensors that no manifest buffer refers to.
func Unused(m *Model, f *safetensors.File) []string {
	used := make(map[string]bool, len(m.Buffers))
	for _, b := range m.Buffers {
		if b.Name != "" {
			used[b.Name] = true
		}
	}
	var out []string
	for _, name := range f.TensorNames() {
		if !used[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
