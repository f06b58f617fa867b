package tracing

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shoksin/walletBot/internal/clients/tg"
	"github.com/shoksin/walletBot/internal/logger"
	"github.com/shoksin/walletBot/internal/models/messages"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer

// Init Инициализация OpenTelemetry + OTLP-экспортёра (Jaeger).
// Возвращает функцию остановки провайдера.
func Init(ctx context.Context, otlpEndpoint string) (func(context.Context) error, error) {
	exporterCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exporter, err := otlptracehttp.New(exporterCtx,
		otlptracehttp.WithEndpoint(otlpEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("error create OTLP exporter: %v", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("wallet-bot"),
		)),
	)

	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("wallet-bot")

	return tp.Shutdown, nil
}

// TracingMiddleware Создание спана на обработку одного обновления.
func TracingMiddleware(next tg.HandlerFunc) tg.HandlerFunc {
	handler := tg.HandlerFunc(func(tgUpdate tgbotapi.Update, c *tg.Client, msgModel *messages.Model) {
		if tracer == nil {
			next.RunFunc(tgUpdate, c, msgModel)
			return
		}

		ctx, span := tracer.Start(msgModel.GetCtx(), "ProcessingMessages")
		defer span.End()

		if tgUpdate.Message != nil {
			span.SetAttributes(
				attribute.String("chat.id", fmt.Sprintf("%d", tgUpdate.Message.Chat.ID)),
				attribute.String("message.id", fmt.Sprintf("%d", tgUpdate.Message.MessageID)),
			)
		} else if tgUpdate.CallbackQuery != nil {
			span.SetAttributes(
				attribute.String("chat.id", fmt.Sprintf("%d", tgUpdate.CallbackQuery.From.ID)),
				attribute.String("callback.data", tgUpdate.CallbackQuery.Data),
			)
		}

		traceID := span.SpanContext().TraceID().String()
		logger.Debug("start span trace", "traceId", traceID)

		msgModel.SetCtx(ctx)
		next.RunFunc(tgUpdate, c, msgModel)
	})

	return handler
}
