package server

import (
	"log"
	"net/http"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/rs/cors"

	"github.com/patisson/gqlpg/session"
)

// Options controls route construction.
type Options struct {
	// AllowedOrigins for CORS. Defaults to the local dev frontend.
	AllowedOrigins []string
	// Extensions are additional gqlgen handler extensions to install
	// alongside the resolver timer.
	Extensions []graphql.HandlerExtension
	// Middleware wraps the query handler, outermost first. Applied
	// inside logging and CORS.
	Middleware []func(http.Handler) http.Handler
}

// New builds the GraphQL query handler. Every request acquires a
// database session for its whole lifetime; the session and the request
// are reachable from resolver contexts via SessionFromContext and
// RequestFromContext. The session is released on every exit path.
func New(es graphql.ExecutableSchema, sessions *session.Provider, opts Options) http.Handler {
	srv := handler.NewDefaultServer(es)
	srv.Use(&ResolverTimerExtension{})
	for _, ext := range opts.Extensions {
		srv.Use(ext)
	}

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := sessions.WithSession(r.Context(), func(s *session.Session) error {
			ctx := WithRequest(r.Context(), r)
			ctx = WithSession(ctx, s)
			srv.ServeHTTP(w, r.WithContext(ctx))
			return nil
		})
		if err != nil {
			log.Printf("[HTTP] Failed to acquire database session: %v", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		}
	})

	for i := len(opts.Middleware) - 1; i >= 0; i-- {
		h = opts.Middleware[i](h)
	}
	return h
}

// Routes mounts the query handler at /query and the playground at /,
// both behind CORS and request logging.
func Routes(queryHandler http.Handler, opts Options) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	mux := http.NewServeMux()
	mux.Handle("/query", corsHandler.Handler(LoggingMiddleware(queryHandler)))
	mux.Handle("/", corsHandler.Handler(LoggingMiddleware(playground.Handler("GraphQL playground", "/query"))))
	return mux
}
