package tokengate_test

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
)

// gateContext mocks the router.Context
type gateContext struct {
	mock.Mock
	NextCalled bool
}

func (m *gateContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *gateContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *gateContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *gateContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *gateContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *gateContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *gateContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *gateContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *gateContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *gateContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *gateContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *gateContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *gateContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *gateContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *gateContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *gateContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *gateContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *gateContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *gateContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *gateContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *gateContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *gateContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *gateContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *gateContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *gateContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *gateContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *gateContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *gateContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *gateContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *gateContext) Query(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *gateContext) QueryValues(key string) []string {
	args := m.Called(key)
	return args.Get(0).([]string)
}

func (m *gateContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *gateContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *gateContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *gateContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *gateContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *gateContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *gateContext) Referer() string {
	args := m.Called()
	return args.String(0)
}

func (m *gateContext) FormFile(key string) (*multipart.FileHeader, error) {
	args := m.Called(key)
	if f := args.Get(0); f != nil {
		return f.(*multipart.FileHeader), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *gateContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *gateContext) IP() string {
	args := m.Called()
	return args.String(0)
}

func (m *gateContext) LocalsMerge(key any, value map[string]any) map[string]any {
	args := m.Called(key, value)
	return args.Get(0).(map[string]any)
}

func (m *gateContext) SendStatus(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *gateContext) SendStream(r io.Reader) error {
	args := m.Called(r)
	return args.Error(0)
}

func (m *gateContext) RouteName() string {
	args := m.Called()
	return args.String(0)
}

func (m *gateContext) RouteParams() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}
