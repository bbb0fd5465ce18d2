package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ListVersionsParams are the query parameters of both version listings.
type ListVersionsParams struct {
	// L is the maximum number of components to scan.
	L *int `form:"l,omitempty" json:"l,omitempty"`
	// R is the repository name.
	R *string `form:"r,omitempty" json:"r,omitempty"`
	// G is the groupId.
	G *string `form:"g,omitempty" json:"g,omitempty"`
	// A is the artifactId.
	A *string `form:"a,omitempty" json:"a,omitempty"`
	// C is the classifier.
	C *string `form:"c,omitempty" json:"c,omitempty"`
	// E is the extension.
	E *string `form:"e,omitempty" json:"e,omitempty"`
}

// DownloadParams are the query parameters of an artifact download.
type DownloadParams struct {
	R string  `form:"r" json:"r"`
	G string  `form:"g" json:"g"`
	A string  `form:"a" json:"a"`
	V string  `form:"v" json:"v"`
	C *string `form:"c,omitempty" json:"c,omitempty"`
	E *string `form:"e,omitempty" json:"e,omitempty"`
}

// ServerInterface is the set of HTTP operations served by the router.
type ServerInterface interface {
	// (GET /maven/versions)
	ListVersions(w http.ResponseWriter, r *http.Request, params ListVersionsParams)
	// (GET /maven/rundeck/versions)
	ListRundeckVersions(w http.ResponseWriter, r *http.Request, params ListVersionsParams)
	// (GET /maven/download)
	Download(w http.ResponseWriter, r *http.Request, params DownloadParams)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a query parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

type requiredParam struct {
	name string
	dest *string
}

type optionalParam struct {
	name string
	dest **string
}

// MiddlewareFunc wraps a single operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper binds query parameters and dispatches to the ServerInterface.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.Handler) {
	for _, middleware := range siw.HandlerMiddlewares {
		h = middleware(h)
	}
	h.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) bindListVersions(r *http.Request) (ListVersionsParams, error) {
	var params ListVersionsParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "l", q, &params.L); err != nil {
		return params, &InvalidParamFormatError{ParamName: "l", Err: err}
	}
	for _, p := range []optionalParam{
		{"r", &params.R}, {"g", &params.G}, {"a", &params.A}, {"c", &params.C}, {"e", &params.E},
	} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			return params, &InvalidParamFormatError{ParamName: p.name, Err: err}
		}
	}
	return params, nil
}

// ListVersions operation middleware.
func (siw *ServerInterfaceWrapper) ListVersions(w http.ResponseWriter, r *http.Request) {
	params, err := siw.bindListVersions(r)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListVersions(w, r, params)
	}))
}

// ListRundeckVersions operation middleware.
func (siw *ServerInterfaceWrapper) ListRundeckVersions(w http.ResponseWriter, r *http.Request) {
	params, err := siw.bindListVersions(r)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListRundeckVersions(w, r, params)
	}))
}

// Download operation middleware. r, g, a and v are required.
func (siw *ServerInterfaceWrapper) Download(w http.ResponseWriter, r *http.Request) {
	var params DownloadParams
	q := r.URL.Query()

	for _, p := range []requiredParam{
		{"r", &params.R}, {"g", &params.G}, {"a", &params.A}, {"v", &params.V},
	} {
		if err := runtime.BindQueryParameter("form", true, true, p.name, q, p.dest); err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: p.name, Err: err})
			return
		}
	}
	for _, p := range []optionalParam{{"c", &params.C}, {"e", &params.E}} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: p.name, Err: err})
			return
		}
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.Download(w, r, params)
	}))
}

// HealthCheck operation middleware.
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.HealthCheck))
}

// Metrics operation middleware.
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.Metrics))
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates an http.Handler with routing matching the operations.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions mounts the operations on options.BaseRouter, or a new router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/maven/versions", wrapper.ListVersions)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/maven/rundeck/versions", wrapper.ListRundeckVersions)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/maven/download", wrapper.Download)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.HealthCheck)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/metrics", wrapper.Metrics)
	})

	return r
}
