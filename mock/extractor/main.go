package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	pageSize      = 10
	playlistItems = 35
)

type streamItem struct {
	ServiceID  int    `json:"service_id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Uploader   string `json:"uploader"`
	Duration   int64  `json:"duration"`
	StreamType string `json:"stream_type"`
}

type itemError struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

type pageBody struct {
	ServiceID int          `json:"service_id,omitempty"`
	URL       string       `json:"url,omitempty"`
	Name      string       `json:"name,omitempty"`
	Kind      string       `json:"kind,omitempty"`
	Items     []streamItem `json:"items"`
	NextPage  string       `json:"next_page,omitempty"`
	Errors    []itemError  `json:"errors,omitempty"`
}

// page returns the fixture slice starting at offset. Every 13th entry is reported
// as unavailable instead of being returned.
func page(serviceID int, url string, offset int) pageBody {
	body := pageBody{Items: []streamItem{}}

	end := min(offset+pageSize, playlistItems)
	for i := offset; i < end; i++ {
		itemURL := fmt.Sprintf("%s#item-%d", url, i)
		if i > 0 && i%13 == 0 {
			body.Errors = append(body.Errors, itemError{URL: itemURL, Message: "video unavailable"})
			continue
		}
		body.Items = append(body.Items, streamItem{
			ServiceID:  serviceID,
			URL:        itemURL,
			Title:      fmt.Sprintf("Track %02d", i+1),
			Uploader:   "Mock Uploader",
			Duration:   int64(120 + i*7),
			StreamType: "audio",
		})
	}
	if end < playlistItems {
		body.NextPage = "offset-" + strconv.Itoa(end)
	}

	return body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Extractor] Write error: %v", err)
	}
}

func source(r *http.Request) (int, string, bool) {
	serviceID, err := strconv.Atoi(r.URL.Query().Get("service_id"))
	url := r.URL.Query().Get("url")

	return serviceID, url, err == nil && url != ""
}

func main() {
	http.HandleFunc("/api/v1/info", func(w http.ResponseWriter, r *http.Request) {
		// Simulate extraction latency (100-300ms)
		time.Sleep(time.Duration(100+time.Now().UnixNano()%200) * time.Millisecond)

		serviceID, url, ok := source(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "service_id and url are required"})
			return
		}

		body := page(serviceID, url, 0)
		body.ServiceID = serviceID
		body.URL = url
		body.Name = "Mock playlist"
		body.Kind = "playlist"
		writeJSON(w, http.StatusOK, body)

		log.Printf("[Extractor] %s %s url=%s - 200 OK", r.Method, r.URL.Path, url)
	})

	http.HandleFunc("/api/v1/page", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		serviceID, url, ok := source(r)
		token := r.URL.Query().Get("page")
		offset, err := strconv.Atoi(strings.TrimPrefix(token, "offset-"))
		if !ok || err != nil || offset < 0 || offset >= playlistItems {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid page token"})
			return
		}

		writeJSON(w, http.StatusOK, page(serviceID, url, offset))

		log.Printf("[Extractor] %s %s page=%s - 200 OK", r.Method, r.URL.Path, token)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	log.Println("Mock extractor running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
