package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	. "github.com/sabaq/backend/apps/api/echo"
	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/course"
	"github.com/sabaq/backend/core/user"
	"github.com/sabaq/backend/services/logger"
	"github.com/sabaq/backend/storage/database/inmem"
)

var (
	errMissingToken = httpErr{Detail: "missing or malformed jwt"}
	errInvalidToken = httpErr{Detail: "invalid or expired jwt"}
)

type env struct {
	conf       *core.Config
	app        *Server
	usrRepo    user.Repository
	courseRepo course.Repository
}

func setup(t *testing.T) *env {
	conf := &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Sabaq",
		SecretKey: "test-secret",
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
		Grading:   core.GradingConfig{DefaultPassingScore: 2},
	}
	logger := logsvc.NewRollbarLogger(zap.NewNop(), conf)
	logger.Enable(false)

	// set up DB & repos
	db := inmemdb.Open()
	e := &env{
		conf:       conf,
		usrRepo:    inmemdb.NewUserRepository(db),
		courseRepo: inmemdb.NewCourseRepository(db),
	}

	// set up services
	usrSvc := user.NewService(e.usrRepo)
	courseSvc := course.NewService(e.courseRepo, usrSvc, course.Options{
		DefaultPassingScore: conf.Grading.DefaultPassingScore,
		Logger:              logger,
	})

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	// set up server
	e.app = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        usrSvc,
		CourseSvc:      courseSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return e
}

type httpErr struct {
	Detail string `json:"detail"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (e *env) getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr, e.conf), e.conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func (e *env) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			e.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
