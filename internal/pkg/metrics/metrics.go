package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	memberOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learnway",
		Subsystem: "member",
		Name:      "operations_total",
		Help:      "Member workflow invocations by operation and result.",
	}, []string{"operation", "result"})

	avatarFiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learnway",
		Subsystem: "avatar",
		Name:      "files_total",
		Help:      "Avatar file operations by action and result.",
	}, []string{"action", "result"})
)

// RecordMemberOperation counts one workflow call; a nil err is recorded as success.
func RecordMemberOperation(operation string, err error) {
	memberOperations.WithLabelValues(operation, result(err)).Inc()
}

// RecordAvatarFile counts one avatar store or delete.
func RecordAvatarFile(action string, err error) {
	avatarFiles.WithLabelValues(action, result(err)).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
