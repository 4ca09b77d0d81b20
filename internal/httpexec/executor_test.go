package httpexec

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/petrijr/checkout/internal/registry"
	"github.com/petrijr/checkout/pkg/api"
)

func newTestExecutor(t *testing.T, endpoints map[string]api.EndpointDescriptor) *Executor {
	t.Helper()
	reg, err := registry.New(endpoints)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return New(reg, nil)
}

func TestFetch_GETWithoutParams(t *testing.T) {
	var gotMethod, gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":1,"name":"Ada"}`)
	}))
	defer srv.Close()

	exec := newTestExecutor(t, map[string]api.EndpointDescriptor{
		"getUser": {URL: srv.URL + "/users"},
	})

	data, err := exec.Fetch(context.Background(), api.FetchRequest{Key: "getUser"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodGet {
		t.Fatalf("expected GET, got %s", gotMethod)
	}
	if gotPath != "/users" || gotQuery != "" {
		t.Fatalf("expected bare /users, got %s?%s", gotPath, gotQuery)
	}

	obj, ok := data.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded object, got %T", data)
	}
	if obj["name"] != "Ada" {
		t.Fatalf("unexpected payload: %v", obj)
	}
}

func TestFetch_AppendsQueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	exec := newTestExecutor(t, map[string]api.EndpointDescriptor{
		"getOrders": {URL: srv.URL + "/orders"},
	})

	_, err := exec.Fetch(context.Background(), api.FetchRequest{
		Key: "getOrders",
		Params: []api.Param{
			{Name: "userId", Value: "123"},
			{Name: "status", Value: "open"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "userId=123&status=open" {
		t.Fatalf("unexpected query string: %q", gotQuery)
	}
}

func TestFetch_SendsConfiguredHeaders(t *testing.T) {
	var gotAuth, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("X-Api-Version")
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	exec := newTestExecutor(t, map[string]api.EndpointDescriptor{
		"getUser": {
			URL: srv.URL + "/users",
			Headers: map[string]string{
				"Authorization": "Bearer token",
				"X-Api-Version": "2",
			},
		},
	})

	if _, err := exec.Fetch(context.Background(), api.FetchRequest{Key: "getUser"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer token" || gotVersion != "2" {
		t.Fatalf("headers not sent: auth=%q version=%q", gotAuth, gotVersion)
	}
}

func TestSubmit_POSTWithJSONBody(t *testing.T) {
	var gotMethod, gotContentType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"status":"accepted"}`)
	}))
	defer srv.Close()

	exec := newTestExecutor(t, map[string]api.EndpointDescriptor{
		"submitPayment": {URL: srv.URL + "/payments"},
	})

	data, err := exec.Submit(context.Background(), api.FetchRequest{
		Key:  "submitPayment",
		Body: map[string]any{"amount": 99.5, "currency": "EUR"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected json content type, got %q", gotContentType)
	}
	if gotBody["currency"] != "EUR" {
		t.Fatalf("body not delivered: %v", gotBody)
	}
	if obj := data.(map[string]any); obj["status"] != "accepted" {
		t.Fatalf("unexpected response payload: %v", data)
	}
}

func TestExecute_DescriptorMethodOverridesFallback(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	exec := newTestExecutor(t, map[string]api.EndpointDescriptor{
		"updateUser": {URL: srv.URL + "/users", Method: api.MethodPut},
	})

	// Fetch would default to GET, but the descriptor says PUT.
	if _, err := exec.Fetch(context.Background(), api.FetchRequest{Key: "updateUser"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("expected PUT from descriptor, got %s", gotMethod)
	}
}

func TestFetch_UnknownKey(t *testing.T) {
	exec := newTestExecutor(t, map[string]api.EndpointDescriptor{
		"getUser": {URL: "https://api.example.com/users"},
	})

	_, err := exec.Fetch(context.Background(), api.FetchRequest{Key: "nope"})
	var ue *api.UnknownEndpointError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnknownEndpointError, got %v", err)
	}
}

func TestFetch_NonSuccessStatusBecomesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"out of money"}`)
	}))
	defer srv.Close()

	exec := newTestExecutor(t, map[string]api.EndpointDescriptor{
		"getUser": {URL: srv.URL + "/users"},
	})

	_, err := exec.Fetch(context.Background(), api.FetchRequest{Key: "getUser"})
	var he *api.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", he.Status)
	}
	if string(he.Body) != `{"error":"out of money"}` {
		t.Fatalf("expected body preserved, got %q", he.Body)
	}
}

func TestFetch_InvalidJSONBecomesDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json at all`)
	}))
	defer srv.Close()

	exec := newTestExecutor(t, map[string]api.EndpointDescriptor{
		"getUser": {URL: srv.URL + "/users"},
	})

	_, err := exec.Fetch(context.Background(), api.FetchRequest{Key: "getUser"})
	var de *api.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestFetch_ConnectionFailureBecomesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	exec := newTestExecutor(t, map[string]api.EndpointDescriptor{
		"getUser": {URL: addr + "/users"},
	})

	_, err := exec.Fetch(context.Background(), api.FetchRequest{Key: "getUser"})
	var te *api.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestFetch_CancelledContextBecomesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	exec := newTestExecutor(t, map[string]api.EndpointDescriptor{
		"getUser": {URL: srv.URL + "/users"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.Fetch(ctx, api.FetchRequest{Key: "getUser"})
	var te *api.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError for cancelled context, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestResolveURL(t *testing.T) {
	exec := newTestExecutor(t, map[string]api.EndpointDescriptor{
		"getOrders": {URL: "https://api.example.com/orders"},
	})

	url, err := exec.ResolveURL(api.FetchRequest{
		Key:    "getOrders",
		Params: []api.Param{{Name: "userId", Value: "123"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://api.example.com/orders?userId=123" {
		t.Fatalf("unexpected resolved url: %q", url)
	}

	url, err = exec.ResolveURL(api.FetchRequest{Key: "getOrders"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://api.example.com/orders" {
		t.Fatalf("expected bare url without params, got %q", url)
	}

	if _, err := exec.ResolveURL(api.FetchRequest{Key: "nope"}); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}
