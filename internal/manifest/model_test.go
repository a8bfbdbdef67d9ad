package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/peek/internal/safetensors"
	"github.com/born-ml/peek/internal/tensor"
)

const netJSON = `{
  "backend": "WEBGPU",
  "input_size": 602112,
  "output_size": 4000,
  "functions": {"E_32_2": "kernel source"},
  "statements": [
    {"kernel": "E_32_2", "args": ["buf_0", "input", "buf_1"], "global_size": [32, 1, 1], "local_size": [2, 1, 1]},
    {"kernel": "r_4", "args": ["outputs", "buf_0", "buf_9", "buf_9"], "global_size": [4, 1, 1], "local_size": [1, 1, 1]}
  ],
  "buffers": {
    "buf_0": {"size": 64, "id": "_conv_stem"},
    "buf_1": {"size": 8, "id": "bias"},
    "buf_2": {"size": 16, "id": "_fc"},
    "scratch": {"size": 1024, "id": ""}
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func openContainer(t *testing.T) *safetensors.File {
	t.Helper()

	stem, err := tensor.FromSlice("_conv_stem", tensor.Shape{4, 2, 2}, tensor.Float32, make([]float32, 16))
	require.NoError(t, err)
	bias, err := tensor.FromSlice("bias", tensor.Shape{3}, tensor.Float32, []float32{1, 2, 3})
	require.NoError(t, err)
	extra, err := tensor.FromSlice("extra", tensor.Shape{1}, tensor.Int64, []int64{7})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "net.safetensors")
	require.NoError(t, safetensors.Write(path, []*tensor.RawTensor{stem, bias, extra}, nil))

	f, err := safetensors.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestLoad(t *testing.T) {
	m, err := Load(writeFile(t, "net.json", netJSON))
	require.NoError(t, err)

	assert.Equal(t, "WEBGPU", m.Backend)
	assert.Equal(t, uint64(602112), m.InputSize)
	assert.Equal(t, uint64(4000), m.OutputSize)
	require.Len(t, m.Statements, 2)
	assert.Equal(t, []uint64{32, 1, 1}, m.Statements[0].GlobalSize)
	assert.Equal(t, Buffer{Size: 64, Name: "_conv_stem"}, m.Buffers["buf_0"])
	assert.Equal(t, []string{"buf_0", "buf_1", "buf_2"}, m.Weights())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "bad.json", `{"buffers": [`))
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	m, err := Load(writeFile(t, "net.json", netJSON))
	require.NoError(t, err)
	f := openContainer(t)

	problems, err := Check(m, f)
	require.NoError(t, err)

	want := []Problem{
		{Kind: SizeMismatch, Buffer: "buf_1", Tensor: "bias", Detail: "manifest says 8 bytes, container has 12"},
		{Kind: MissingTensor, Buffer: "buf_2", Tensor: "_fc", Detail: "not in container"},
		{Kind: UndeclaredArg, Buffer: "buf_9", Detail: "statement 1 (r_4)"},
	}
	if diff := cmp.Diff(want, problems); diff != "" {
		t.Errorf("Check() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"extra"}, Unused(m, f))
}

func TestCheck_Clean(t *testing.T) {
	m := &Model{
		Buffers: map[string]Buffer{
			"w": {Size: 64, Name: "_conv_stem"},
			"b": {Size: 12, Name: "bias"},
		},
		Statements: []Statement{{Kernel: "k", Args: []string{"input", "w", "b", "outputs"}}},
	}
	problems, err := Check(m, openContainer(t))
	require.NoError(t, err)
	assert.Empty(t, problems)

	_, err = Check(nil, nil)
	assert.Error(t, err)
}

func TestProblem_String(t *testing.T) {
	p := Problem{Kind: MissingTensor, Buffer: "buf_2", Tensor: "_fc", Detail: "not in container"}
	assert.Equal(t, "missing_tensor: buffer buf_2 (tensor _fc): not in container", p.String())

	p = Problem{Kind: UndeclaredArg, Buffer: "buf_9", Detail: "statement 1 (r_4)"}
	assert.Equal(t, "undeclared_arg: buf_9: statement 1 (r_4)", p.String())
}
