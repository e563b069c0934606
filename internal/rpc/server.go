package rpc

import (
	"context"
	"io"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/analysis"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/store"
)

// #region server-struct

// Recorder persists finished analyses. *store.Store satisfies it.
type Recorder interface {
	Record(req analysis.Request, rep analysis.Report, err error) (store.Run, error)
}

// Server answers vigenere.v1.Analyzer calls with a shared analyzer.
type Server struct {
	analyzer *analysis.Analyzer
	recorder Recorder
	logger   *slog.Logger
}

// NewServer wraps analyzer. recorder and logger may be nil.
func NewServer(analyzer *analysis.Analyzer, recorder Recorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{analyzer: analyzer, recorder: recorder, logger: logger}
}

// #endregion server-struct

// #region analyze

// Analyze runs a full analysis. Failures come back as status errors carrying
// the partial report as a detail.
func (s *Server) Analyze(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	req, err := decodeRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	rep, analyzeErr := s.analyzer.Analyze(req)

	var runID string
	if s.recorder != nil {
		run, err := s.recorder.Record(req, rep, analyzeErr)
		if err != nil {
			s.logger.Warn("record run failed", "err", err)
		} else {
			runID = run.RunID
		}
	}

	out, err := encodeReport(rep, runID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode report: %v", err)
	}
	if analyzeErr != nil {
		s.logger.Info("analyze rpc failed", "language", req.Language, "err", analyzeErr)
		return nil, toStatus(analyzeErr, out)
	}
	s.logger.Info("analyze rpc", "language", rep.Language, "key_length", rep.KeyLength, "run_id", runID)
	return out, nil
}

// #endregion analyze

// #region transform

// Decipher applies a known key to text.
func (s *Server) Decipher(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.transform(ctx, in, s.analyzer.Decipher)
}

// Encipher applies a key to plaintext.
func (s *Server) Encipher(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.transform(ctx, in, s.analyzer.Encipher)
}

func (s *Server) transform(ctx context.Context, in *structpb.Struct, apply func(string, alphabet.Key, bool) (string, error)) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	key, err := alphabet.ParseKey(stringField(in, "key"))
	if err != nil {
		if errkind.Classify(err) == errkind.CodeUnknown {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, toStatus(err, nil)
	}
	text, err := apply(stringField(in, "text"), key, boolField(in, "preserve_format"))
	if err != nil {
		return nil, toStatus(err, nil)
	}
	return structpb.NewStruct(map[string]interface{}{"text": text})
}

// #endregion transform
