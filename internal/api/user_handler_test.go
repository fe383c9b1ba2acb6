package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihirk/taskman-api/internal/domain"
	"github.com/mihirk/taskman-api/internal/mocks"
	userservice "github.com/mihirk/taskman-api/internal/service/user"
	"github.com/mihirk/taskman-api/internal/store"
)

type userHandlerFixture struct {
	userStore *mocks.MockUserStore
	taskStore *mocks.MockTaskStore
	mailer    *mocks.MockMailer
	router    http.Handler
}

func newUserFixture(t *testing.T, authedUser *domain.User) *userHandlerFixture {
	t.Helper()

	userStore := mocks.NewMockUserStore()
	taskStore := mocks.NewMockTaskStore()
	mailer := &mocks.MockMailer{}

	svc, err := userservice.NewService(
		nil,
		userStore,
		taskStore,
		&mocks.MockPasswordHasher{},
		&mocks.MockPasswordVerifier{ShouldSucceed: true},
		&mocks.MockJWTService{Token: "session-token"},
		mailer,
		nil,
	)
	require.NoError(t, err)

	h := NewUserHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Post("/users", h.Register)
	r.Post("/users/login", h.Login)
	r.Get("/users/{id}/avatar", h.GetAvatar)
	r.Group(func(r chi.Router) {
		if authedUser != nil {
			r.Use(withUser(authedUser))
		}
		r.Post("/users/logout", h.Logout)
		r.Post("/users/logoutAll", h.LogoutAll)
		r.Get("/users/me", h.Me)
		r.Patch("/users/me", h.Update)
		r.Delete("/users/me", h.Delete)
		r.Post("/users/me/avatar", h.UploadAvatar)
		r.Delete("/users/me/avatar", h.DeleteAvatar)
	})

	return &userHandlerFixture{
		userStore: userStore,
		taskStore: taskStore,
		mailer:    mailer,
		router:    r,
	}
}

func (f *userHandlerFixture) seedUser(t *testing.T) *domain.User {
	t.Helper()
	u := testUser(t)
	require.NoError(t, f.userStore.Create(context.Background(), u))
	return u
}

func TestUserRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates account", func(t *testing.T) {
		f := newUserFixture(t, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/users",
			strings.NewReader(`{"name":"Mike","email":"Mike@Example.com","password":"longenough","age":30}`))
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusCreated, w.Code)

		var body AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "mike@example.com", body.User.Email)
		assert.Equal(t, "session-token", body.Token)
		assert.NotEqual(t, uuid.Nil, body.User.ID)
	})

	t.Run("response carries no secrets", func(t *testing.T) {
		f := newUserFixture(t, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/users",
			strings.NewReader(`{"name":"Mike","email":"mike@example.com","password":"longenough"}`))
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusCreated, w.Code)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		var userFields map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw["user"], &userFields))
		assert.NotContains(t, userFields, "password")
		assert.NotContains(t, userFields, "tokens")
		assert.NotContains(t, userFields, "avatar")
	})

	t.Run("duplicate email is 400", func(t *testing.T) {
		f := newUserFixture(t, nil)

		body := `{"name":"Mike","email":"mike@example.com","password":"longenough"}`
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, httptest.NewRequest("POST", "/users", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		f.router.ServeHTTP(w, httptest.NewRequest("POST", "/users", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("weak password is 400", func(t *testing.T) {
		f := newUserFixture(t, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/users",
			strings.NewReader(`{"name":"Mike","email":"mike@example.com","password":"short"}`))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserLogin(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		f := newUserFixture(t, nil)
		seeded := f.seedUser(t)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/users/login",
			strings.NewReader(`{"email":"mike@example.com","password":"longenough"}`))
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var body AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, seeded.ID, body.User.ID)
		assert.NotEmpty(t, body.Token)
	})

	t.Run("failures share one body", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"unknown email", `{"email":"nobody@example.com","password":"longenough"}`},
			{"malformed body", `{"email":`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newUserFixture(t, nil)
				f.seedUser(t)

				w := httptest.NewRecorder()
				f.router.ServeHTTP(w, httptest.NewRequest("POST", "/users/login", strings.NewReader(tt.body)))

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), LoginErrorMessage)
			})
		}
	})
}

func TestUserMe(t *testing.T) {
	t.Parallel()

	user := testUser(t)
	f := newUserFixture(t, user)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("GET", "/users/me", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, user.ID, body.ID)
	assert.Equal(t, user.Email, body.Email)
}

func TestUserLogout(t *testing.T) {
	t.Parallel()

	user := testUser(t)
	f := newUserFixture(t, user)
	require.NoError(t, f.userStore.Create(context.Background(), user))
	require.NoError(t, f.userStore.AddToken(context.Background(), user.ID, "test-session"))
	require.NoError(t, f.userStore.AddToken(context.Background(), user.ID, "other-session"))

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("POST", "/users/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"other-session"}, f.userStore.Tokens[user.ID],
		"only the authenticated session should be revoked")
}

func TestUserLogoutAll(t *testing.T) {
	t.Parallel()

	user := testUser(t)
	f := newUserFixture(t, user)
	require.NoError(t, f.userStore.Create(context.Background(), user))
	require.NoError(t, f.userStore.AddToken(context.Background(), user.ID, "test-session"))
	require.NoError(t, f.userStore.AddToken(context.Background(), user.ID, "other-session"))

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("POST", "/users/logoutAll", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.userStore.Tokens[user.ID])
}

func TestUserUpdate(t *testing.T) {
	t.Parallel()

	t.Run("updates allowed fields", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))

		w := httptest.NewRecorder()
		r := httptest.NewRequest("PATCH", "/users/me",
			strings.NewReader(`{"name":"Michael","age":31}`))
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var body UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Michael", body.Name)
		assert.Equal(t, 31, body.Age)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))

		w := httptest.NewRecorder()
		r := httptest.NewRequest("PATCH", "/users/me",
			strings.NewReader(`{"nickname":"Mikey"}`))
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), InvalidUpdatesMessage)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))

		w := httptest.NewRecorder()
		r := httptest.NewRequest("PATCH", "/users/me",
			strings.NewReader(`{"password":"short"}`))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects whitespace-only name", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))

		w := httptest.NewRecorder()
		r := httptest.NewRequest("PATCH", "/users/me",
			strings.NewReader(`{"name":"   "}`))
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)

		stored, err := f.userStore.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mike", stored.Name)
	})

	t.Run("empty body is a no-op", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, httptest.NewRequest("PATCH", "/users/me", strings.NewReader(`{}`)))

		require.Equal(t, http.StatusOK, w.Code)

		var body UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, user.Name, body.Name)
		assert.Equal(t, user.Email, body.Email)
	})
}

func TestUserDelete(t *testing.T) {
	t.Parallel()

	user := testUser(t)
	f := newUserFixture(t, user)
	require.NoError(t, f.userStore.Create(context.Background(), user))
	require.NoError(t, f.userStore.AddToken(context.Background(), user.ID, "test-session"))

	task, err := domain.NewTask(user.ID, "Soon to be orphaned", false)
	require.NoError(t, err)
	require.NoError(t, f.taskStore.Create(context.Background(), task))

	cancellationSent := make(chan struct{})
	f.mailer.SendCancellationFn = func(email, name string) error {
		close(cancellationSent)
		return nil
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest("DELETE", "/users/me", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, user.ID, body.ID)
	assert.Equal(t, user.Email, body.Email)

	_, err = f.userStore.GetByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.Empty(t, f.userStore.Tokens[user.ID])

	_, err = f.taskStore.GetByOwnerAndID(context.Background(), user.ID, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	select {
	case <-cancellationSent:
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation mail was never sent")
	}
}

func avatarUpload(t *testing.T, fieldName, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for x := 0; x < 40; x++ {
		for y := 0; y < 60; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 4), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// paddedPNG grows a valid PNG to exactly size bytes. The PNG decoder stops
// at the IEND chunk, so the trailing padding never reaches it.
func paddedPNG(t *testing.T, size int) []byte {
	t.Helper()

	data := testPNG(t)
	require.LessOrEqual(t, len(data), size)
	return append(data, make([]byte, size-len(data))...)
}

func TestUserAvatar(t *testing.T) {
	t.Parallel()

	t.Run("upload then fetch", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))

		body, contentType := avatarUpload(t, "avatar", "me.png", testPNG(t))
		r := httptest.NewRequest("POST", "/users/me/avatar", body)
		r.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		// Public fetch, no auth required
		w = httptest.NewRecorder()
		f.router.ServeHTTP(w, httptest.NewRequest("GET", "/users/"+user.ID.String()+"/avatar", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

		img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, 250, img.Bounds().Dx())
		assert.Equal(t, 250, img.Bounds().Dy())
	})

	t.Run("accepts a file of exactly the size limit", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))

		body, contentType := avatarUpload(t, "avatar", "me.png", paddedPNG(t, MaxAvatarBytes))
		r := httptest.NewRequest("POST", "/users/me/avatar", body)
		r.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code,
			"multipart framing overhead must not count against the file limit")
	})

	t.Run("rejects a file over the size limit", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))

		body, contentType := avatarUpload(t, "avatar", "me.png", paddedPNG(t, MaxAvatarBytes+1))
		r := httptest.NewRequest("POST", "/users/me/avatar", body)
		r.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "too large")
	})

	t.Run("rejects wrong extension", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))

		body, contentType := avatarUpload(t, "avatar", "document.pdf", testPNG(t))
		r := httptest.NewRequest("POST", "/users/me/avatar", body)
		r.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "jpeg")
	})

	t.Run("rejects undecodable image", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))

		body, contentType := avatarUpload(t, "avatar", "broken.png", []byte("not an image"))
		r := httptest.NewRequest("POST", "/users/me/avatar", body)
		r.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing field is 400", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))

		body, contentType := avatarUpload(t, "picture", "me.png", testPNG(t))
		r := httptest.NewRequest("POST", "/users/me/avatar", body)
		r.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete clears the avatar", func(t *testing.T) {
		user := testUser(t)
		f := newUserFixture(t, user)
		require.NoError(t, f.userStore.Create(context.Background(), user))
		require.NoError(t, f.userStore.UpdateAvatar(context.Background(), user.ID, testPNG(t)))

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, httptest.NewRequest("DELETE", "/users/me/avatar", nil))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		f.router.ServeHTTP(w, httptest.NewRequest("GET", "/users/"+user.ID.String()+"/avatar", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown user avatar is 404", func(t *testing.T) {
		f := newUserFixture(t, nil)

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, httptest.NewRequest("GET", "/users/"+uuid.NewString()+"/avatar", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed user ID is 404", func(t *testing.T) {
		f := newUserFixture(t, nil)

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, httptest.NewRequest("GET", "/users/not-a-uuid/avatar", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
