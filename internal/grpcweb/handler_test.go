package grpcweb

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"heart-clinic/internal/clinic"
	"heart-clinic/internal/logger"
	"heart-clinic/internal/middleware"
	"heart-clinic/internal/rpc"
	"heart-clinic/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const secret = "test-secret"

func newBridge(t *testing.T) http.Handler {
	t.Helper()
	log := logger.Discard()
	svc := clinic.New(store.NewMemory(), secret, log)
	require.NoError(t, svc.SeedDoctor(context.Background(), "doctor", "doctor123"))

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(middleware.Auth(secret, rpc.Policy())))
	rpc.RegisterClinicServer(srv, rpc.NewServer(svc, log))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := rpc.Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return New(conn, log, []string{"*"}).Handler()
}

func encodeFrame(t *testing.T, msg map[string]any) []byte {
	t.Helper()
	s, err := structpb.NewStruct(msg)
	require.NoError(t, err)
	payload, err := proto.Marshal(s)
	require.NoError(t, err)
	buf := make([]byte, 5+len(payload))
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(payload)))
	copy(buf[5:], payload)
	return buf
}

type reply struct {
	msg     *structpb.Struct
	trailer string
}

func decodeFrames(t *testing.T, body []byte) reply {
	t.Helper()
	var out reply
	for len(body) >= 5 {
		flag := body[0]
		n := binary.BigEndian.Uint32(body[1:5])
		payload := body[5 : 5+n]
		body = body[5+n:]
		if flag == flagTrailer {
			out.trailer = string(payload)
			continue
		}
		out.msg = new(structpb.Struct)
		require.NoError(t, proto.Unmarshal(payload, out.msg))
	}
	return out
}

func call(t *testing.T, h http.Handler, method, token string, body []byte) reply {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, Prefix+method, bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentType, rec.Header().Get("Content-Type"))
	return decodeFrames(t, rec.Body.Bytes())
}

func TestBridgeLoginAndRecords(t *testing.T) {
	h := newBridge(t)

	res := call(t, h, rpc.MethodLogin, "", encodeFrame(t, map[string]any{
		"username": "doctor", "password": "doctor123", "role": "Doctor",
	}))
	require.NotNil(t, res.msg)
	assert.Contains(t, res.trailer, "grpc-status:0")
	assert.True(t, res.msg.Fields["success"].GetBoolValue())
	token := res.msg.Fields["token"].GetStringValue()
	require.NotEmpty(t, token)

	res = call(t, h, rpc.MethodRecords, "", encodeFrame(t, map[string]any{}))
	assert.Nil(t, res.msg)
	assert.Contains(t, res.trailer, "grpc-status:16")

	res = call(t, h, rpc.MethodRecords, token, encodeFrame(t, map[string]any{}))
	require.NotNil(t, res.msg)
	assert.Contains(t, res.trailer, "grpc-status:0")
}

func TestBridgeRejects(t *testing.T) {
	h := newBridge(t)

	res := call(t, h, "Drop", "", encodeFrame(t, map[string]any{}))
	assert.Contains(t, res.trailer, "grpc-status:12")

	res = call(t, h, rpc.MethodLogin, "", []byte{0, 0})
	assert.Contains(t, res.trailer, "grpc-status:3")

	res = call(t, h, rpc.MethodLogin, "", []byte{0, 0, 0, 0, 9, 1})
	assert.Contains(t, res.trailer, "incomplete frame")

	req := httptest.NewRequest(http.MethodPost, Prefix+rpc.MethodLogin, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestBridgeTextVariant(t *testing.T) {
	h := newBridge(t)

	frame := encodeFrame(t, map[string]any{"username": "doctor", "password": "doctor123"})
	req := httptest.NewRequest(http.MethodPost, Prefix+rpc.MethodLogin,
		strings.NewReader(base64.StdEncoding.EncodeToString(frame)))
	req.Header.Set("Content-Type", contentTypeText)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// each frame is base64 encoded on its own
	var raw []byte
	body := rec.Body.String()
	for body != "" {
		n := base64.StdEncoding.EncodedLen(5)
		head, err := base64.StdEncoding.DecodeString(body[:n])
		if err != nil {
			break
		}
		size := 5 + int(binary.BigEndian.Uint32(head[1:5]))
		enc := base64.StdEncoding.EncodedLen(size)
		chunk, err := base64.StdEncoding.DecodeString(body[:enc])
		require.NoError(t, err)
		raw = append(raw, chunk...)
		body = body[enc:]
	}
	res := decodeFrames(t, raw)
	require.NotNil(t, res.msg)
	assert.True(t, res.msg.Fields["success"].GetBoolValue())
}
