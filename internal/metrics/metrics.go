package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every peek collector. It is private so one-shot CLI runs
// do not pick up the default Go runtime collectors.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	FilesOpened = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "peek_files_opened_total",
		Help: "Containers opened, by source kind (mmap or file)",
	}, []string{"source"})

	HeaderParseDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "peek_header_parse_duration_seconds",
		Help:    "Time spent reading and validating container headers",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})

	TensorsReadTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "peek_tensors_read_total",
		Help: "Tensors read from containers, by dtype",
	}, []string{"dtype"})

	TensorBytesRead = factory.NewCounter(prometheus.CounterOpts{
		Name: "peek_tensor_bytes_read_total",
		Help: "Bytes of tensor data read from containers",
	})

	ValidationErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "peek_validation_errors_total",
		Help: "Header validation failures, by error type",
	}, []string{"error_type"})

	NumericalInstability = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "peek_numerical_instability_total",
		Help: "Total number of NaN/Inf values detected",
	}, []string{"tensor", "type"})
)

func RecordFileOpened(source string) {
	FilesOpened.WithLabelValues(source).Inc()
}

func RecordHeaderParse(duration time.Duration) {
	HeaderParseDuration.Observe(duration.Seconds())
}

func RecordTensorRead(dtype string, bytes int) {
	TensorsReadTotal.WithLabelValues(dtype).Inc()
	TensorBytesRead.Add(float64(bytes))
}

func RecordValidationError(errorType string) {
	ValidationErrors.WithLabelValues(errorType).Inc()
}

func RecordNumericalInstability(name string, nanCount, infCount int) {
	if nanCount > 0 {
		NumericalInstability.WithLabelValues(name, "nan").Add(float64(nanCount))
	}
	if infCount > 0 {
		NumericalInstability.WithLabelValues(name, "inf").Add(float64(infCount))
	}
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
