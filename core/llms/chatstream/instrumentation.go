package chatstream

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/ema-chat/core/llms/chatstream"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

var (
	requestCounter, _ = meter.Int64Counter("chatstream.requests",
		metric.WithDescription("Streaming requests sent to the endpoint, by response status"))
	deltaCounter, _ = meter.Int64Counter("chatstream.deltas",
		metric.WithDescription("Text deltas extracted from the response streams"))
	discardedCounter, _ = meter.Int64Counter("chatstream.discarded_fragments",
		metric.WithDescription("Unparsable payload fragments dropped by the decoder"))
)
