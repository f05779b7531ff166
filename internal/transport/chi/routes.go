package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is the set of HTTP operations served under /api.
type ServerInterface interface {
	// (POST /api/chunks)
	CreateChunks(w http.ResponseWriter, r *http.Request)
	// (POST /api/vectorstore)
	CreateVectorStore(w http.ResponseWriter, r *http.Request)
	// (GET /api/vectorstore/{storeID})
	GetVectorStore(w http.ResponseWriter, r *http.Request, storeID string)
	// (POST /api/chat)
	Chat(w http.ResponseWriter, r *http.Request)
	// (POST /api/notes)
	CreateNotes(w http.ResponseWriter, r *http.Request)
	// (POST /api/topics)
	CreateTopics(w http.ResponseWriter, r *http.Request)
	// (GET /api/usage)
	GetUsage(w http.ResponseWriter, r *http.Request, params GetUsageParams)
	// (GET /api/health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ServerOptions configures route registration.
type ServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError reports a parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// Handler registers every route of si on opts.BaseRouter (a new router when nil) and returns it.
func Handler(si ServerInterface, opts ServerOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	onErr := opts.ErrorHandlerFunc
	if onErr == nil {
		onErr = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		}
	}
	wrapper := serverInterfaceWrapper{handler: si, errorHandlerFunc: onErr}

	r.Group(func(r chi.Router) {
		r.Post("/api/chunks", si.CreateChunks)
		r.Post("/api/vectorstore", si.CreateVectorStore)
		r.Get("/api/vectorstore/{storeID}", wrapper.GetVectorStore)
		r.Post("/api/chat", si.Chat)
		r.Post("/api/notes", si.CreateNotes)
		r.Post("/api/topics", si.CreateTopics)
		r.Get("/api/usage", wrapper.GetUsage)
		r.Get("/api/health", si.HealthCheck)
		r.Get("/metrics", si.Metrics)
	})
	return r
}

type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// GetVectorStore binds the storeID path parameter.
func (siw serverInterfaceWrapper) GetVectorStore(w http.ResponseWriter, r *http.Request) {
	var storeID string

	err := runtime.BindStyledParameterWithOptions("simple", "storeID", chi.URLParam(r, "storeID"), &storeID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "storeID", Err: err})
		return
	}

	siw.handler.GetVectorStore(w, r, storeID)
}

// GetUsage binds the optional period query parameter.
func (siw serverInterfaceWrapper) GetUsage(w http.ResponseWriter, r *http.Request) {
	var params GetUsageParams

	err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &params.Period)
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "period", Err: err})
		return
	}

	siw.handler.GetUsage(w, r, params)
}
