package testutil

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/akashi/internal/client/walrus"
)

// Walrus is a fake publisher and aggregator served from one httptest
// server. Blob ids are derived from content, so storing the same bytes twice
// answers alreadyCertified.
type Walrus struct {
	*httptest.Server

	// JWTSecret, when set, makes the publisher require a valid bearer token.
	JWTSecret []byte

	mu         sync.Mutex
	blobs      map[string][]byte
	owners     map[string]string
	failStatus int
	puts       int
}

func NewWalrus() *Walrus {
	w := &Walrus{
		blobs:  make(map[string][]byte),
		owners: make(map[string]string),
	}
	w.Server = httptest.NewServer(http.HandlerFunc(w.serve))
	return w
}

// FailWith makes the publisher answer status to every PUT; 0 restores it.
func (w *Walrus) FailWith(status int) {
	w.mu.Lock()
	w.failStatus = status
	w.mu.Unlock()
}

// Puts counts PUT requests that reached the publisher.
func (w *Walrus) Puts() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.puts
}

// Blobs counts stored blobs.
func (w *Walrus) Blobs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.blobs)
}

// Owner returns the send_object_to of a stored blob.
func (w *Walrus) Owner(blobID string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.owners[blobID]
}

func BlobID(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func (w *Walrus) serve(rw http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPut && r.URL.Path == "/v1/blobs":
		w.store(rw, r)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/blobs/"):
		w.read(rw, strings.TrimPrefix(r.URL.Path, "/v1/blobs/"))
	default:
		http.NotFound(rw, r)
	}
}

func (w *Walrus) store(rw http.ResponseWriter, r *http.Request) {
	w.mu.Lock()
	w.puts++
	status := w.failStatus
	w.mu.Unlock()

	if status != 0 {
		http.Error(rw, http.StatusText(status), status)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	owner := r.URL.Query().Get("send_object_to")
	epochs, _ := strconv.Atoi(r.URL.Query().Get("epochs"))

	if w.JWTSecret != nil {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims, err := walrus.ParseToken(tok, w.JWTSecret)
		if err != nil || claims.SendObjectTo != owner || claims.Size != int64(len(data)) {
			http.Error(rw, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	id := BlobID(data)

	w.mu.Lock()
	_, exists := w.blobs[id]
	if !exists {
		w.blobs[id] = data
		w.owners[id] = owner
	}
	w.mu.Unlock()

	var resp any
	if exists {
		resp = map[string]any{
			"alreadyCertified": map[string]any{"blobId": id, "endEpoch": epochs},
		}
	} else {
		resp = map[string]any{
			"newlyCreated": map[string]any{
				"blobObject": map[string]any{"blobId": id, "size": len(data)},
				"cost":       1000,
			},
		}
	}

	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(resp)
}

func (w *Walrus) read(rw http.ResponseWriter, id string) {
	w.mu.Lock()
	data, ok := w.blobs[id]
	w.mu.Unlock()

	if !ok {
		http.Error(rw, "blob not found", http.StatusNotFound)
		return
	}
	rw.Header().Set("Content-Type", "application/octet-stream")
	_, _ = rw.Write(data)
}
