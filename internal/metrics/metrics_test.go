package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTensorRead(t *testing.T) {
	before := testutil.ToFloat64(TensorsReadTotal.WithLabelValues("F32"))
	bytesBefore := testutil.ToFloat64(TensorBytesRead)

	RecordTensorRead("F32", 128)
	RecordTensorRead("F32", 64)

	assert.Equal(t, before+2, testutil.ToFloat64(TensorsReadTotal.WithLabelValues("F32")))
	assert.Equal(t, bytesBefore+192, testutil.ToFloat64(TensorBytesRead))
}

func TestRecordNumericalInstability(t *testing.T) {
	RecordNumericalInstability("tensor1", 5, 0) // 5 NaNs
	RecordNumericalInstability("tensor2", 0, 3) // 3 Infs

	assert.Equal(t, 5.0, testutil.ToFloat64(NumericalInstability.WithLabelValues("tensor1", "nan")))
	assert.Equal(t, 3.0, testutil.ToFloat64(NumericalInstability.WithLabelValues("tensor2", "inf")))
}

func TestRecordMisc(t *testing.T) {
	// Just verify no panic
	RecordFileOpened("mmap")
	RecordHeaderParse(150 * time.Microsecond)
	RecordValidationError("offset_overlap")
}

func TestWriteTextfile(t *testing.T) {
	RecordTensorRead("BF16", 2)

	path := filepath.Join(t.TempDir(), "peek.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `peek_tensors_read_total{dtype="BF16"}`)
	assert.Contains(t, string(data), "# TYPE peek_tensor_bytes_read_total counter")
}
