package ajun

import "net/http"

type Middleware func(http.Handler) http.Handler

type ajun struct {
	router      *http.ServeMux
	middlewares []Middleware
	Handler     http.Handler
}

func newMux() *http.ServeMux {
	return http.NewServeMux()
}

func NewRouter() *ajun {
	mux := newMux()
	return &ajun{
		router:  mux,
		Handler: mux,
	}
}

func (a *ajun) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	a.router.HandleFunc(pattern, handler)
}

// Use wraps the router; the first middleware added runs first.
func (a *ajun) Use(mw Middleware) {
	a.middlewares = append(a.middlewares, mw)

	var h http.Handler = a.router
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	a.Handler = h
}
