// Package server implements the SQS query-protocol endpoint: it decodes
// form bodies, dispatches on the action name and renders XML responses.
package server

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tabeth/quickq/models"
	"github.com/tabeth/quickq/params"
	"github.com/tabeth/quickq/store"
)

// App carries the handler dependencies. Metadata is the durable record of
// which queues exist; Queues holds their messages.
type App struct {
	Metadata store.MetadataStore
	Queues   *store.Registry
	// Hostname prefixes every queue URL, e.g. "http://localhost:9324".
	Hostname string
	// DefaultQueue receives SendMessage and ReceiveMessage calls that carry
	// no QueueUrl. Empty makes QueueUrl mandatory.
	DefaultQueue string
	Logger       *zap.SugaredLogger

	validate *validator.Validate
}

func New(metadata store.MetadataStore, queues *store.Registry, hostname, defaultQueue string, logger *zap.SugaredLogger) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &App{
		Metadata:     metadata,
		Queues:       queues,
		Hostname:     strings.TrimRight(hostname, "/"),
		DefaultQueue: defaultQueue,
		Logger:       logger,
		validate:     validator.New(),
	}
}

// Bootstrap registers every persisted queue in memory, so queues created
// before a restart accept messages again, and then the default queue.
// Messages themselves do not survive a restart. The default queue lives in
// memory only until a CreateQueue call persists it.
func (app *App) Bootstrap(ctx context.Context) error {
	names, err := app.Metadata.QueueNames(ctx)
	if err != nil {
		return fmt.Errorf("loading queues: %w", err)
	}
	for _, name := range names {
		app.Queues.EnsureQueue(name, nil)
	}
	if app.DefaultQueue != "" {
		app.Queues.EnsureQueue(app.DefaultQueue, nil)
	}
	app.Logger.Infow("registry rehydrated", "persisted_queues", len(names), "default_queue", app.DefaultQueue)
	return nil
}

// RegisterSQSHandlers mounts the query-protocol endpoint on r.
func (app *App) RegisterSQSHandlers(r chi.Router) {
	r.Post("/", app.RootSQSHandler)
}

// RootSQSHandler decodes the form body once, resolves the action and hands
// the decoded form to the matching handler.
func (app *App) RootSQSHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		app.sendErrorResponse(w, r, models.MalformedRequest("MalformedQueryString", "Failed to read request body"))
		return
	}
	form, err := params.Decode(body)
	if err != nil {
		app.sendErrorResponse(w, r, models.Wrap(models.KindMalformedRequest, "MalformedQueryString", "The request body is not valid form encoding", err))
		return
	}

	action, err := ResolveAction(r.Header.Get("X-Amz-Target"), form)
	if err != nil {
		name := r.Header.Get("X-Amz-Target")
		if name == "" {
			name = form["Action"]
		}
		app.sendErrorResponse(w, r, models.New(models.KindUnknownAction, "InvalidAction", fmt.Sprintf("The action %s is not valid for this endpoint.", name)))
		return
	}

	switch action {
	case ActionCreateQueue:
		app.CreateQueueHandler(w, r, form)
	case ActionListQueues:
		app.ListQueuesHandler(w, r, form)
	case ActionSendMessage:
		app.SendMessageHandler(w, r, form)
	case ActionReceiveMessage:
		app.ReceiveMessageHandler(w, r, form)
	}
}

// requestID reuses the id chi's RequestID middleware assigned, if any.
func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

func (app *App) queueURL(name string) string {
	return app.Hostname + "/" + name
}

// queueName resolves the target queue from a QueueUrl (its last path
// segment) or falls back to the default queue.
func (app *App) queueName(queueURL string) (string, *models.APIError) {
	if queueURL == "" {
		if app.DefaultQueue == "" {
			return "", models.MalformedRequest("MissingParameter", "The request must contain the parameter QueueUrl.")
		}
		return app.DefaultQueue, nil
	}
	p := queueURL
	if u, err := url.Parse(queueURL); err == nil && u.Path != "" {
		p = u.Path
	}
	name := path.Base(strings.TrimRight(p, "/"))
	if name == "." || name == "/" || name == "" {
		return "", models.MalformedRequest("InvalidParameterValue", "Value "+queueURL+" for parameter QueueUrl is invalid.")
	}
	return name, nil
}

// writeXML marshals v before touching the response so a serialization
// failure can still be reported as a proper error document.
func (app *App) writeXML(w http.ResponseWriter, r *http.Request, v any) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		app.sendErrorResponse(w, r, models.Wrap(models.KindSerializationFailure, "InternalFailure", "Failed to serialize response", err))
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// sendErrorResponse renders err as an SQS ErrorResponse document. Server-side
// failures are logged with their cause; the cause is never sent to clients.
func (app *App) sendErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := models.AsAPIError(err)
	reqID := requestID(r)
	if apiErr.Kind.ServerSide() {
		app.Logger.Errorw("request failed",
			"request_id", reqID,
			"kind", apiErr.Kind.String(),
			"code", apiErr.Code,
			"error", apiErr.Err,
		)
	} else {
		app.Logger.Debugw("request rejected",
			"request_id", reqID,
			"kind", apiErr.Kind.String(),
			"code", apiErr.Code,
			"message", apiErr.Message,
		)
	}

	resp := models.ErrorResponse{
		Error: models.ErrorDetail{
			Type:    apiErr.FaultType(),
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
		RequestId: reqID,
	}
	out, mErr := xml.Marshal(resp)
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(apiErr.StatusCode())
	if mErr != nil {
		// Only reachable if the response type stops being marshalable.
		app.Logger.Errorw("marshaling error response", "request_id", reqID, "error", mErr)
		return
	}
	w.Write([]byte(xml.Header))
	w.Write(out)
}
