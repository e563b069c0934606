package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/analysis"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/profile"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/store"
)

// #region helpers
func newAnalyzer(t *testing.T) *analysis.Analyzer {
	t.Helper()
	r, err := profile.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	return analysis.NewAnalyzer(r, analysis.DefaultConfig(), nil)
}

// serve starts an in-process server on a bufconn listener and returns a
// client dialed to it plus a counter of intercepted calls.
func serve(t *testing.T, a *analysis.Analyzer, rec Recorder) (*Client, *int32) {
	t.Helper()
	var calls int32
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return handler(ctx, req)
	}))
	RegisterAnalyzerServer(srv, NewServer(a, rec, nil))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, &calls
}

func englishCiphertext(t *testing.T, a *analysis.Analyzer, key string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "english.txt"))
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	k, err := alphabet.ParseKey(key)
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	ct, err := a.Encipher(string(data), k, false)
	if err != nil {
		t.Fatalf("Encipher: %v", err)
	}
	return ct
}

type mockService struct {
	AnalyzerServiceClient

	resp *structpb.Struct
	err  error
}

func (m *mockService) Analyze(_ context.Context, _ *structpb.Struct, _ ...grpc.CallOption) (*structpb.Struct, error) {
	return m.resp, m.err
}

// #endregion helpers

// #region analyze-tests
func TestAnalyze_OverBufconn(t *testing.T) {
	a := newAnalyzer(t)
	client, calls := serve(t, a, nil)

	res, err := client.Analyze(context.Background(), analysis.Request{
		Text:     englishCiphertext(t, a, "KEY"),
		Language: "eng",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Key != "KEY" || res.KeyLength != 3 || res.Language != "eng" {
		t.Fatalf("unexpected result: key=%s len=%d lang=%s", res.Key, res.KeyLength, res.Language)
	}
	if len(res.Candidates) == 0 || res.Candidates[len(res.Candidates)-1].Length != 3 {
		t.Errorf("expected candidates ending at 3, got %+v", res.Candidates)
	}
	if len(res.Attempts) != 1 || res.Attempts[0].ErrorCode != errkind.CodeNone {
		t.Errorf("unexpected attempts: %+v", res.Attempts)
	}
	if res.RunID != "" {
		t.Errorf("no recorder configured, got run id %s", res.RunID)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("expected interceptor to see 1 call, got %d", *calls)
	}
}

func TestAnalyze_RecordsRun(t *testing.T) {
	a := newAnalyzer(t)
	st, err := store.NewStore(filepath.Join(t.TempDir(), "rpc.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	client, _ := serve(t, a, st)

	res, err := client.Analyze(context.Background(), analysis.Request{
		Text:     englishCiphertext(t, a, "LEMON"),
		Language: analysis.LanguageAuto,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("expected run id from recorder")
	}
	run, err := st.GetRun(res.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Key != "LEMON" {
		t.Errorf("expected stored key LEMON, got %s", run.Key)
	}
}

func TestAnalyze_NotFoundKeepsPartialReport(t *testing.T) {
	a := newAnalyzer(t)
	client, _ := serve(t, a, nil)

	res, err := client.Analyze(context.Background(), analysis.Request{
		Text:         englishCiphertext(t, a, "CRYPTOGRAPHY"),
		Language:     "eng",
		MaxKeyLength: 10,
	})
	if !errors.Is(err, errkind.ErrKeyLengthNotFound) {
		t.Fatalf("expected ErrKeyLengthNotFound, got %v", err)
	}
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition, got %v", status.Code(err))
	}
	if res.Key != "" || res.KeyLength != 0 {
		t.Errorf("no key may be reported on failure, got %s/%d", res.Key, res.KeyLength)
	}
	if len(res.Candidates) != 10 {
		t.Errorf("expected lengths 1..10 probed, got %d", len(res.Candidates))
	}
	if len(res.Attempts) != 1 || res.Attempts[0].ErrorCode != errkind.CodeKeyLengthNotFound {
		t.Errorf("unexpected attempts: %+v", res.Attempts)
	}
}

func TestAnalyze_UnknownProfile(t *testing.T) {
	client, _ := serve(t, newAnalyzer(t), nil)
	_, err := client.Analyze(context.Background(), analysis.Request{Text: "ABC", Language: "deu"})
	if !errors.Is(err, errkind.ErrProfileMismatch) {
		t.Fatalf("expected ErrProfileMismatch, got %v", err)
	}
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", status.Code(err))
	}
}

func TestAnalyze_CanceledContext(t *testing.T) {
	s := NewServer(newAnalyzer(t), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in, _ := encodeRequest(analysis.Request{Text: "ABC"})
	_, err := s.Analyze(ctx, in)
	if status.Code(err) != codes.Canceled {
		t.Fatalf("expected Canceled, got %v", err)
	}
}

func TestAnalyze_TransportError(t *testing.T) {
	c := NewClientWithService(&mockService{err: errors.New("connection refused")})
	_, err := c.Analyze(context.Background(), analysis.Request{Text: "ABC"})
	if err == nil || !strings.Contains(err.Error(), "analyze rpc") {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if c.Close() != nil {
		t.Error("Close on an injected client should be a no-op")
	}
}

func TestAnalyze_MalformedResponse(t *testing.T) {
	resp, _ := structpb.NewStruct(map[string]interface{}{"key_length": 2.5})
	c := NewClientWithService(&mockService{resp: resp})
	if _, err := c.Analyze(context.Background(), analysis.Request{Text: "ABC"}); err == nil {
		t.Fatal("expected error for fractional key length")
	}
}

// #endregion analyze-tests

// #region transform-tests
func TestEncipherDecipher_RoundTrip(t *testing.T) {
	client, _ := serve(t, newAnalyzer(t), nil)
	ctx := context.Background()

	ct, err := client.Encipher(ctx, "Attack at dawn!", "LEMON", false)
	if err != nil {
		t.Fatalf("Encipher: %v", err)
	}
	if ct != "LXFOPVEFRNHR" {
		t.Fatalf("expected LXFOPVEFRNHR, got %s", ct)
	}

	formatted, err := client.Encipher(ctx, "Attack at dawn!", "LEMON", true)
	if err != nil {
		t.Fatalf("Encipher preserve: %v", err)
	}
	plain, err := client.Decipher(ctx, formatted, "lemon", true)
	if err != nil {
		t.Fatalf("Decipher: %v", err)
	}
	if plain != "Attack at dawn!" {
		t.Fatalf("round trip lost layout: %q", plain)
	}
}

func TestDecipher_BadKeys(t *testing.T) {
	client, _ := serve(t, newAnalyzer(t), nil)
	ctx := context.Background()

	_, err := client.Decipher(ctx, "ABC", "", false)
	if !errors.Is(err, errkind.ErrInvalidKeyLength) {
		t.Errorf("expected ErrInvalidKeyLength for empty key, got %v", err)
	}
	_, err = client.Decipher(ctx, "ABC", "K3Y", false)
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument for non-letter key, got %v", err)
	}
}

// #endregion transform-tests

// #region wire-tests
func TestStatusCode(t *testing.T) {
	cases := map[errkind.Code]codes.Code{
		errkind.CodeNone:              codes.OK,
		errkind.CodeEmptyInput:        codes.InvalidArgument,
		errkind.CodeInvalidKeyLength:  codes.InvalidArgument,
		errkind.CodeLayoutMismatch:    codes.InvalidArgument,
		errkind.CodeDuplicateMapping:  codes.InvalidArgument,
		errkind.CodeProfileMismatch:   codes.NotFound,
		errkind.CodeKeyLengthNotFound: codes.FailedPrecondition,
		errkind.CodeUnknown:           codes.Internal,
	}
	for in, want := range cases {
		if got := statusCode(in); got != want {
			t.Errorf("statusCode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromStatus_KeepsCodeAndSentinel(t *testing.T) {
	cause := fmt.Errorf("analyze eng: %w", errkind.ErrKeyLengthNotFound)
	detail, err := fromStatus("analyze", toStatus(cause, nil))
	if !errors.Is(err, errkind.ErrKeyLengthNotFound) {
		t.Errorf("expected the sentinel to survive, got %v", err)
	}
	if got := status.Code(err); got != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition, got %v", got)
	}
	if stringField(detail, "error_code") != string(errkind.CodeKeyLengthNotFound) {
		t.Errorf("unexpected detail %v", detail)
	}
}

func TestDecodeRequest_Defaults(t *testing.T) {
	in, _ := structpb.NewStruct(map[string]interface{}{"text": "abc"})
	req, err := decodeRequest(in)
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}
	if req.Language != analysis.LanguageAuto || req.MaxKeyLength != 0 || req.PreserveFormat {
		t.Fatalf("unexpected defaults: %+v", req)
	}

	in, _ = structpb.NewStruct(map[string]interface{}{"max_key_length": 4.5})
	if _, err := decodeRequest(in); !errors.Is(err, errNotInteger) {
		t.Fatalf("expected errNotInteger, got %v", err)
	}
}

// #endregion wire-tests
