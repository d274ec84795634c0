package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/openprofile/openprofile/actions"
	"github.com/openprofile/openprofile/internal/domain"
	"github.com/openprofile/openprofile/internal/present/rest/middleware"
	"github.com/openprofile/openprofile/internal/service"
	"github.com/openprofile/openprofile/internal/usecase"
	"github.com/openprofile/openprofile/visibility"
)

// --- mocks ---

type mockAccountRepo struct {
	account domain.Account
}

func (m *mockAccountRepo) GetAccount(ctx context.Context, userID string) (domain.Account, error) {
	if userID != m.account.UserID {
		return domain.Account{}, domain.NotFoundError{Resource: "account"}
	}
	return m.account, nil
}

func (m *mockAccountRepo) UpsertProperty(ctx context.Context, userID string, prop domain.Property) error {
	return nil
}

type mockTrustRepo struct {
	secrets map[string]string
}

func (m *mockTrustRepo) Lookup(ctx context.Context, serverDomain string) (domain.TrustedServer, error) {
	if secret, ok := m.secrets[serverDomain]; ok {
		return domain.TrustedServer{Domain: serverDomain, Status: domain.TrustStatusOK, SharedSecret: secret}, nil
	}
	return domain.TrustedServer{}, domain.NotFoundError{Resource: "trusted server"}
}

// --- fixtures ---

const (
	testFQDN       = "cloud.example.com"
	testBase       = "https://cloud.example.com"
	testSecret     = "test-secret"
	testPeerSecret = "peer-secret"
)

func testAccount() domain.Account {
	return domain.Account{
		UserID: "alice",
		Properties: []domain.Property{
			{Name: visibility.FieldProfileEnabled, Value: "1", Scope: visibility.ScopeStringLocal},
			{Name: visibility.FieldDisplayName, Value: "Alice", Scope: visibility.ScopeStringLocal},
			{Name: visibility.FieldBiography, Value: "hacker", Scope: visibility.ScopeStringPrivate},
			{Name: visibility.FieldHeadline, Value: "hello", Scope: visibility.ScopeStringFederated},
			{Name: visibility.FieldAvatar, Value: "", Scope: visibility.ScopeStringLocal},
			{Name: visibility.FieldEmail, Value: "alice@example.com", Scope: visibility.ScopeStringLocal},
		},
	}
}

func newTestServer(account domain.Account) *echo.Echo {
	config := domain.Config{FQDN: testFQDN, BaseURL: testBase, SessionSecret: testSecret}

	registry := actions.NewRegistry()
	registry.Register(visibility.FieldEmail, func(v string) actions.Action {
		return actions.NewEmailAction(v)
	})

	profileUC := usecase.NewProfileUsecase(&mockAccountRepo{account: account}, registry, nil, nil)
	trustUC := usecase.NewTrustUsecase(&mockTrustRepo{secrets: map[string]string{"peer.example.com": testPeerSecret}})
	auth := service.NewAuthService(&config)

	e := echo.New()
	viewer := middleware.NewViewerMiddleware(auth, trustUC, config)
	e.Use(viewer.IdentifyViewer)

	h := NewHandler(config, profileUC, trustUC, nil)
	h.RegisterRoutes(e)
	return e
}

func sessionToken(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{testFQDN},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func peerToken(t *testing.T, issuer, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{testFQDN},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func getProfile(t *testing.T, e *echo.Echo, configure func(*http.Request)) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/profile/alice", nil)
	req.Header.Set("Origin", testBase)
	if configure != nil {
		configure(req)
	}
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	var body map[string]json.RawMessage
	if res.Code == http.StatusOK {
		if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
	}
	return res, body
}

func parameters(t *testing.T, body map[string]json.RawMessage) map[string]*string {
	t.Helper()
	var params map[string]*string
	if err := json.Unmarshal(body["parameters"], &params); err != nil {
		t.Fatalf("invalid parameters: %v", err)
	}
	return params
}

// --- tests ---

func TestProfileAnonymousSameInstance(t *testing.T) {
	e := newTestServer(testAccount())

	res, body := getProfile(t, e, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	params := parameters(t, body)
	if params["displayName"] == nil || *params["displayName"] != "Alice" {
		t.Fatal("local field should be disclosed on same instance")
	}
	if params["biography"] != nil {
		t.Fatal("private field must be null for anonymous viewer")
	}
	if params["headline"] != nil {
		t.Fatal("federated field must be null for same-instance browser request")
	}

	var actionList []json.RawMessage
	if err := json.Unmarshal(body["actions"], &actionList); err == nil && len(actionList) != 0 {
		t.Fatal("anonymous viewer must not receive actions")
	}
}

func TestProfileAuthenticatedSameInstance(t *testing.T) {
	e := newTestServer(testAccount())
	token := sessionToken(t, "bob")

	res, body := getProfile(t, e, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	params := parameters(t, body)
	if params["biography"] == nil || *params["biography"] != "hacker" {
		t.Fatal("private field should be disclosed to authenticated same-instance viewer")
	}

	var actionList []map[string]any
	if err := json.Unmarshal(body["actions"], &actionList); err != nil {
		t.Fatal(err)
	}
	if len(actionList) != 1 || actionList[0]["target"] != "mailto:alice@example.com" {
		t.Fatalf("expected email action, got %v", actionList)
	}
}

func TestProfileTrustedFederationPeer(t *testing.T) {
	e := newTestServer(testAccount())

	res, body := getProfile(t, e, func(req *http.Request) {
		req.Header.Set("Origin", "https://peer.example.com")
		req.Header.Set(domain.RequesterDomainHeader, "peer.example.com")
		req.Header.Set(domain.RequesterTokenHeader, peerToken(t, "peer.example.com", testPeerSecret))
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	params := parameters(t, body)
	if params["headline"] == nil || *params["headline"] != "hello" {
		t.Fatal("federated field should be disclosed to trusted peer")
	}
	if params["displayName"] != nil {
		t.Fatal("local field must be null cross-instance")
	}
}

func TestProfilePeerAnnouncementWithoutProof(t *testing.T) {
	e := newTestServer(testAccount())

	// Naming a registered peer is not proof of being that peer.
	res, body := getProfile(t, e, func(req *http.Request) {
		req.Header.Set("Origin", "https://peer.example.com")
		req.Header.Set(domain.RequesterDomainHeader, "peer.example.com")
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	params := parameters(t, body)
	for name, value := range params {
		if value != nil {
			t.Fatalf("field %s disclosed on an unproven announcement", name)
		}
	}
}

func TestProfilePeerAnnouncementForgedProof(t *testing.T) {
	e := newTestServer(testAccount())

	res, body := getProfile(t, e, func(req *http.Request) {
		req.Header.Set("Origin", "https://peer.example.com")
		req.Header.Set(domain.RequesterDomainHeader, "peer.example.com")
		req.Header.Set(domain.RequesterTokenHeader, peerToken(t, "peer.example.com", "guessed-secret"))
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	params := parameters(t, body)
	for name, value := range params {
		if value != nil {
			t.Fatalf("field %s disclosed on a forged announcement", name)
		}
	}
}

func TestProfileUntrustedPeer(t *testing.T) {
	e := newTestServer(testAccount())

	res, body := getProfile(t, e, func(req *http.Request) {
		req.Header.Set("Origin", "https://stranger.example.com")
		req.Header.Set(domain.RequesterDomainHeader, "stranger.example.com")
		req.Header.Set(domain.RequesterTokenHeader, peerToken(t, "stranger.example.com", "stranger-secret"))
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	params := parameters(t, body)
	for name, value := range params {
		if value != nil {
			t.Fatalf("field %s disclosed to untrusted cross-instance peer", name)
		}
	}
}

func TestProfileDisabledIs404(t *testing.T) {
	account := testAccount()
	account.Properties[0].Value = "not-a-bool"
	e := newTestServer(account)

	res, _ := getProfile(t, e, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+sessionToken(t, "alice"))
	})
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
}

func TestProfileUnknownUserIs404(t *testing.T) {
	e := newTestServer(testAccount())

	req := httptest.NewRequest(http.MethodGet, "/profile/nobody", nil)
	req.Header.Set("Origin", testBase)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
}

func TestProfileETag(t *testing.T) {
	e := newTestServer(testAccount())

	res, _ := getProfile(t, e, nil)
	etag := res.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	res2, _ := getProfile(t, e, func(req *http.Request) {
		req.Header.Set("If-None-Match", etag)
	})
	if res2.Code != http.StatusNotModified {
		t.Fatalf("expected 304 got %d", res2.Code)
	}
}

func TestUpdatePropertyRequiresOwner(t *testing.T) {
	e := newTestServer(testAccount())

	payload, _ := json.Marshal(updatePropertyRequest{Value: "new", Scope: visibility.ScopeStringLocal})

	// Anonymous write.
	req := httptest.NewRequest(http.MethodPut, "/profile/alice/properties/headline", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Origin", testBase)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", res.Code)
	}

	// Somebody else's session.
	req = httptest.NewRequest(http.MethodPut, "/profile/alice/properties/headline", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Origin", testBase)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "bob"))
	res = httptest.NewRecorder()
	e.ServeHTTP(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", res.Code)
	}

	// The owner.
	req = httptest.NewRequest(http.MethodPut, "/profile/alice/properties/headline", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Origin", testBase)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "alice"))
	res = httptest.NewRecorder()
	e.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", res.Code, res.Body.String())
	}
}

func TestUpdatePropertyRejectsUnknownScope(t *testing.T) {
	e := newTestServer(testAccount())

	payload, _ := json.Marshal(updatePropertyRequest{Value: "new", Scope: "v9-everyone"})
	req := httptest.NewRequest(http.MethodPut, "/profile/alice/properties/headline", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Origin", testBase)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "alice"))
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestWellKnown(t *testing.T) {
	e := newTestServer(testAccount())

	req := httptest.NewRequest(http.MethodGet, "/.well-known/openprofile", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	var wkp map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &wkp); err != nil {
		t.Fatal(err)
	}
	if wkp["domain"] != testFQDN {
		t.Fatalf("unexpected domain %v", wkp["domain"])
	}
}
