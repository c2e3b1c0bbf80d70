// Package testsupport provides an in-process movie backend for tests.
package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// APIPrefix is where the fake mounts its routes, mirroring production.
const APIPrefix = "/api/v1"

// Movie is a backend record as the fake serves it.
type Movie map[string]any

// Backend is a fake movie backend.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	movies    []Movie
	similar   map[int64][]Movie
	elastic   []json.RawMessage
	failures  map[string]int
	hits      map[string]int
	lastAuth  map[string]string
	token     string
	login     map[string]any
	uploads   []Upload
	addStatus int
	addBody   string
}

// Upload is a captured add-movie form.
type Upload struct {
	Title       string
	Description string
	Genres      string
	PosterName  string
	PosterType  string
	PosterSize  int
}

// NewBackend starts a fake backend closed with the test.
func NewBackend(t *testing.T, movies ...Movie) *Backend {
	t.Helper()

	b := &Backend{
		movies:    movies,
		similar:   make(map[int64][]Movie),
		failures:  make(map[string]int),
		hits:      make(map[string]int),
		lastAuth:  make(map[string]string),
		addStatus: http.StatusOK,
		addBody:   `{"status": "ok"}`,
	}

	r := mux.NewRouter()
	api := r.PathPrefix(APIPrefix).Subrouter()
	api.HandleFunc("/movies", b.wrap("movies", b.listMovies)).Methods(http.MethodGet)
	api.HandleFunc("/movies/top_rated", b.wrap("top_rated", b.topRated)).Methods(http.MethodGet)
	api.HandleFunc("/movies/search", b.wrap("search", b.search)).Methods(http.MethodGet)
	api.HandleFunc("/movies/may_be_interesting", b.wrap("similar", b.similarMovies)).Methods(http.MethodGet)
	api.HandleFunc("/movies/elastic_search", b.wrap("elastic", b.elasticSearch)).Methods(http.MethodGet)
	api.HandleFunc("/movies/you_may_like", b.wrap("you_may_like", b.youMayLike)).Methods(http.MethodGet)
	api.HandleFunc("/movies/add", b.wrap("add", b.addMovie)).Methods(http.MethodPost)
	api.HandleFunc("/movies/{id:[0-9]+}/show_page", b.wrap("show_page", b.showPage)).Methods(http.MethodGet)
	api.HandleFunc("/users/login", b.wrap("login", b.loginUser)).Methods(http.MethodPost)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the API root to point clients at.
func (b *Backend) URL() string {
	return b.Server.URL + APIPrefix
}

// RequireToken makes every route except login answer 401 unless the
// request carries this bearer token.
func (b *Backend) RequireToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

// Fail makes the named route answer with status until cleared with 0.
func (b *Backend) Fail(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = status
}

// SetSimilar configures may_be_interesting results for a movie.
func (b *Backend) SetSimilar(id int64, movies ...Movie) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.similar[id] = movies
}

// SetElastic configures raw elastic_search results.
func (b *Backend) SetElastic(records ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.elastic = b.elastic[:0]
	for _, r := range records {
		b.elastic = append(b.elastic, json.RawMessage(r))
	}
}

// SetLogin configures the login response body.
func (b *Backend) SetLogin(resp map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.login = resp
}

// SetAddResponse configures the add-movie status and body.
func (b *Backend) SetAddResponse(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addStatus = status
	b.addBody = body
}

// Hits returns how many requests a route served.
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

// LastAuthorization returns the Authorization header last sent to a route.
func (b *Backend) LastAuthorization(route string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth[route]
}

// Uploads returns the captured add-movie forms.
func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

func (b *Backend) wrap(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[route]++
		b.lastAuth[route] = r.Header.Get("Authorization")
		status := b.failures[route]
		token := b.token
		b.mu.Unlock()

		if token != "" && route != "login" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		if status != 0 {
			writeJSON(w, status, map[string]string{"detail": http.StatusText(status)})
			return
		}
		h(w, r)
	}
}

func (b *Backend) listMovies(w http.ResponseWriter, r *http.Request) {
	page := intParam(r, "page", 1)
	size := intParam(r, "size", 50)

	b.mu.Lock()
	all := b.movies
	b.mu.Unlock()

	start := min(max(page-1, 0)*size, len(all))
	end := min(start+size, len(all))
	w.Header().Set("X-Total-Count", strconv.Itoa(len(all)))
	writeJSON(w, http.StatusOK, all[start:end])
}

func (b *Backend) showPage(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.movies {
		if movieID(m) == id {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Movie not found"})
}

func (b *Backend) topRated(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 10)

	b.mu.Lock()
	all := b.movies
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, all[:min(limit, len(all))])
}

func (b *Backend) search(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("movie")))
	limit := intParam(r, "limit", 100)

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []Movie{}
	for _, m := range b.movies {
		title, _ := m["title"].(string)
		if q != "" && strings.Contains(strings.ToLower(title), q) {
			out = append(out, m)
		}
		if len(out) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) similarMovies(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.URL.Query().Get("movie_id"), 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.similar[id]
	if out == nil {
		out = []Movie{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) elasticSearch(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.elastic
	if out == nil {
		out = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) youMayLike(w http.ResponseWriter, r *http.Request) {
	topN := intParam(r, "top_n", 10)

	b.mu.Lock()
	all := b.movies
	b.mu.Unlock()

	// Reverse catalog order so recommendations differ from top rated.
	out := make([]Movie, 0, topN)
	for i := len(all) - 1; i >= 0 && len(out) < topN; i-- {
		out = append(out, all[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) addMovie(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": err.Error()}}})
		return
	}

	up := Upload{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Genres:      r.FormValue("genres"),
	}
	if f, h, err := r.FormFile("poster"); err == nil {
		up.PosterName = h.Filename
		up.PosterType = h.Header.Get("Content-Type")
		up.PosterSize = int(h.Size)
		_ = f.Close()
	}

	b.mu.Lock()
	b.uploads = append(b.uploads, up)
	status, body := b.addStatus, b.addBody
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (b *Backend) loginUser(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "username and password required"})
		return
	}

	b.mu.Lock()
	resp := b.login
	b.mu.Unlock()

	if resp == nil || creds.Password == "wrong" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func movieID(m Movie) int64 {
	for _, key := range []string{"movie_id", "id"} {
		switch v := m[key].(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}

func intParam(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v > 0 {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
