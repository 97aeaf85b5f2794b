// Package grpcweb lets browser gRPC-Web clients reach ClinicService over
// HTTP/1.1. Frames are forwarded to the native gRPC server untouched.
package grpcweb

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"strings"

	"heart-clinic/internal/logger"
	"heart-clinic/internal/rpc"

	"github.com/gorilla/handlers"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	contentType     = "application/grpc-web+proto"
	contentTypeText = "application/grpc-web-text"

	flagData    = 0x00
	flagTrailer = 0x80

	maxMessage = 1 << 20
)

// Prefix is the path the bridge is mounted under.
const Prefix = "/" + rpc.ServiceName + "/"

// Bridge translates gRPC-Web (browser HTTP/1.1) into native gRPC calls.
type Bridge struct {
	conn    grpc.ClientConnInterface
	log     *logger.Logger
	origins []string
	methods map[string]bool
}

// New forwards over conn, normally a loopback connection to the server's
// own gRPC listener.
func New(conn grpc.ClientConnInterface, log *logger.Logger, origins []string) *Bridge {
	methods := make(map[string]bool, len(rpc.ServiceDesc.Methods))
	for _, m := range rpc.ServiceDesc.Methods {
		methods[rpc.FullMethod(m.MethodName)] = true
	}
	return &Bridge{conn: conn, log: log, origins: origins, methods: methods}
}

// Handler returns the bridge wrapped in CORS for the configured origins.
func (b *Bridge) Handler() http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ct := r.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "application/grpc-web") {
			http.Error(w, "not grpc-web", http.StatusUnsupportedMediaType)
			return
		}
		b.forward(w, r, strings.HasPrefix(ct, contentTypeText))
	})
	return handlers.CORS(
		handlers.AllowedOrigins(b.origins),
		handlers.AllowedMethods([]string{http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Grpc-Web", "X-User-Agent"}),
		handlers.ExposedHeaders([]string{"Grpc-Status", "Grpc-Message"}),
		handlers.MaxAge(86400),
	)(h)
}

func (b *Bridge) forward(w http.ResponseWriter, r *http.Request, text bool) {
	out := &frameWriter{w: w, text: text}

	if !b.methods[r.URL.Path] {
		out.status(codes.Unimplemented, "unknown method "+r.URL.Path)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessage+5))
	if err != nil {
		out.status(codes.Internal, "read body failed")
		return
	}
	if text {
		if body, err = base64.StdEncoding.DecodeString(string(body)); err != nil {
			out.status(codes.InvalidArgument, "bad base64 body")
			return
		}
	}
	if len(body) < 5 {
		out.status(codes.InvalidArgument, "body too short")
		return
	}

	// frame: 1-byte flag + 4-byte big-endian length + protobuf
	if body[0] != flagData {
		out.status(codes.Unimplemented, "compressed frames are not supported")
		return
	}
	msgLen := binary.BigEndian.Uint32(body[1:5])
	if int(msgLen)+5 > len(body) {
		out.status(codes.InvalidArgument, "incomplete frame")
		return
	}
	payload := body[5 : 5+msgLen]

	md := metadata.MD{}
	if vals := r.Header.Values("Authorization"); len(vals) > 0 {
		md.Set("authorization", vals...)
	}
	ctx := metadata.NewOutgoingContext(r.Context(), md)

	resp := &rawMsg{}
	err = b.conn.Invoke(ctx, r.URL.Path, &rawMsg{data: payload}, resp, grpc.ForceCodec(rawCodec{}))
	if err != nil {
		st, _ := status.FromError(err)
		b.log.WithComponent("grpcweb").WithField("method", r.URL.Path).WithField("code", st.Code().String()).
			Debug("grpc-web call failed")
		out.status(st.Code(), st.Message())
		return
	}
	out.data(resp.data)
	out.status(codes.OK, "")
}

// rawMsg wraps raw protobuf bytes.
type rawMsg struct{ data []byte }

// rawCodec passes bytes through without marshal/unmarshal.
type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	return v.(*rawMsg).data, nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	m := v.(*rawMsg)
	m.data = append([]byte(nil), data...)
	return nil
}

// Name reports "proto" so the server decodes the forwarded bytes with its
// own proto codec.
func (rawCodec) Name() string { return "proto" }

// frameWriter writes length-prefixed frames, base64 encoding each one for
// the text variant. The HTTP status is always 200; errors travel in the
// trailer frame.
type frameWriter struct {
	w       http.ResponseWriter
	text    bool
	started bool
}

func (f *frameWriter) start() {
	if f.started {
		return
	}
	f.started = true
	ct := contentType
	if f.text {
		ct = contentTypeText + "+proto"
	}
	f.w.Header().Set("Content-Type", ct)
	f.w.WriteHeader(http.StatusOK)
}

func (f *frameWriter) frame(flag byte, payload []byte) {
	f.start()
	buf := make([]byte, 5+len(payload))
	buf[0] = flag
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(payload)))
	copy(buf[5:], payload)
	if f.text {
		_, _ = io.WriteString(f.w, base64.StdEncoding.EncodeToString(buf))
		return
	}
	_, _ = f.w.Write(buf)
}

func (f *frameWriter) data(payload []byte) { f.frame(flagData, payload) }

func (f *frameWriter) status(code codes.Code, msg string) {
	var t bytes.Buffer
	fmt.Fprintf(&t, "grpc-status:%d\r\n", code)
	if msg != "" {
		fmt.Fprintf(&t, "grpc-message:%s\r\n", strings.ReplaceAll(msg, "\r\n", " "))
	}
	f.frame(flagTrailer, t.Bytes())
}
