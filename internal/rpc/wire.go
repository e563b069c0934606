package rpc

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/analysis"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/keylength"
)

// #region types

// Result is an analysis report as seen from the client side of the wire.
type Result struct {
	RunID          string
	Language       string
	KeyLength      int
	Key            string
	Plaintext      string
	Ciphertext     string
	Monoalphabetic bool
	Candidates     []keylength.Candidate
	EvalPassed     bool
	EvalReason     string
	Attempts       []AttemptResult
}

// AttemptResult is one profile tried by the server.
type AttemptResult struct {
	Language   string
	KeyLength  int
	Key        string
	Error      string
	ErrorCode  errkind.Code
	EvalPassed bool
	Distance   float64
}

// #endregion types

// #region request-encoding

func encodeRequest(req analysis.Request) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"text":            req.Text,
		"language":        req.Language,
		"max_key_length":  req.MaxKeyLength,
		"preserve_format": req.PreserveFormat,
	})
}

func decodeRequest(s *structpb.Struct) (analysis.Request, error) {
	n, err := intField(s, "max_key_length")
	if err != nil {
		return analysis.Request{}, err
	}
	req := analysis.Request{
		Text:           stringField(s, "text"),
		Language:       stringField(s, "language"),
		MaxKeyLength:   n,
		PreserveFormat: boolField(s, "preserve_format"),
	}
	if req.Language == "" {
		req.Language = analysis.LanguageAuto
	}
	return req, nil
}

// #endregion request-encoding

// #region report-encoding

func encodeReport(rep analysis.Report, runID string) (*structpb.Struct, error) {
	candidates := make([]interface{}, 0, len(rep.Candidates))
	for _, c := range rep.Candidates {
		candidates = append(candidates, map[string]interface{}{
			"length":     c.Length,
			"average_ic": c.AverageIC,
			"classes":    c.Classes,
			"excluded":   c.Excluded,
		})
	}
	attempts := make([]interface{}, 0, len(rep.Attempts))
	for _, a := range rep.Attempts {
		m := map[string]interface{}{
			"language":    a.Language,
			"key_length":  a.KeyLength,
			"key":         a.Key,
			"eval_passed": a.EvalPassed,
			"distance":    a.Distance,
		}
		if a.Err != nil {
			m["error"] = a.Err.Error()
			m["error_code"] = string(errkind.Classify(a.Err))
		}
		attempts = append(attempts, m)
	}
	return structpb.NewStruct(map[string]interface{}{
		"run_id":         runID,
		"language":       rep.Language,
		"key_length":     rep.KeyLength,
		"key":            rep.Key.String(),
		"plaintext":      rep.Plaintext,
		"ciphertext":     rep.Ciphertext.String(),
		"monoalphabetic": rep.Monoalphabetic,
		"candidates":     candidates,
		"eval_passed":    rep.Eval.Passed,
		"eval_reason":    rep.Eval.Reason,
		"attempts":       attempts,
	})
}

func decodeResult(s *structpb.Struct) (Result, error) {
	keyLength, err := intField(s, "key_length")
	if err != nil {
		return Result{}, err
	}
	res := Result{
		RunID:          stringField(s, "run_id"),
		Language:       stringField(s, "language"),
		KeyLength:      keyLength,
		Key:            stringField(s, "key"),
		Plaintext:      stringField(s, "plaintext"),
		Ciphertext:     stringField(s, "ciphertext"),
		Monoalphabetic: boolField(s, "monoalphabetic"),
		EvalPassed:     boolField(s, "eval_passed"),
		EvalReason:     stringField(s, "eval_reason"),
	}
	for _, v := range listField(s, "candidates") {
		m := v.GetStructValue()
		if m == nil {
			return Result{}, fmt.Errorf("decode result: candidate is not an object")
		}
		length, _ := intField(m, "length")
		classes, _ := intField(m, "classes")
		excluded, _ := intField(m, "excluded")
		res.Candidates = append(res.Candidates, keylength.Candidate{
			Length:    length,
			AverageIC: numberField(m, "average_ic"),
			Classes:   classes,
			Excluded:  excluded,
		})
	}
	for _, v := range listField(s, "attempts") {
		m := v.GetStructValue()
		if m == nil {
			return Result{}, fmt.Errorf("decode result: attempt is not an object")
		}
		kl, _ := intField(m, "key_length")
		res.Attempts = append(res.Attempts, AttemptResult{
			Language:   stringField(m, "language"),
			KeyLength:  kl,
			Key:        stringField(m, "key"),
			Error:      stringField(m, "error"),
			ErrorCode:  errkind.Code(stringField(m, "error_code")),
			EvalPassed: boolField(m, "eval_passed"),
			Distance:   numberField(m, "distance"),
		})
	}
	return res, nil
}

// #endregion report-encoding

// #region status-mapping

// statusCode maps an error kind onto the gRPC status code returned for it.
func statusCode(c errkind.Code) codes.Code {
	switch c {
	case errkind.CodeNone:
		return codes.OK
	case errkind.CodeEmptyInput, errkind.CodeInvalidKeyLength,
		errkind.CodeDuplicateMapping, errkind.CodeLayoutMismatch:
		return codes.InvalidArgument
	case errkind.CodeProfileMismatch:
		return codes.NotFound
	case errkind.CodeKeyLengthNotFound:
		return codes.FailedPrecondition
	}
	return codes.Internal
}

// toStatus converts err into a status error whose first detail carries the
// error code and, when given, the partial report.
func toStatus(err error, partial *structpb.Struct) error {
	code := errkind.Classify(err)
	detail := partial
	if detail == nil {
		detail = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	detail.Fields["error_code"] = structpb.NewStringValue(string(code))

	st := status.New(statusCode(code), err.Error())
	if withDetail, derr := st.WithDetails(detail); derr == nil {
		st = withDetail
	}
	return st.Err()
}

// fromStatus rebuilds a client-side error from a status error. Known error
// kinds wrap their sentinel so errors.Is keeps working across the wire.
func fromStatus(op string, err error) (*structpb.Struct, error) {
	st, ok := status.FromError(err)
	if !ok {
		return nil, fmt.Errorf("%s rpc: %w", op, err)
	}
	var detail *structpb.Struct
	for _, d := range st.Details() {
		if s, ok := d.(*structpb.Struct); ok {
			detail = s
			break
		}
	}
	if detail != nil {
		if sentinel := errkind.Sentinel(errkind.Code(stringField(detail, "error_code"))); sentinel != nil {
			return detail, fmt.Errorf("%s rpc: %w: %w", op, sentinel, err)
		}
	}
	return detail, fmt.Errorf("%s rpc: %w", op, err)
}

// #endregion status-mapping

// #region field-helpers

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func boolField(s *structpb.Struct, name string) bool {
	return s.GetFields()[name].GetBoolValue()
}

func numberField(s *structpb.Struct, name string) float64 {
	return s.GetFields()[name].GetNumberValue()
}

func listField(s *structpb.Struct, name string) []*structpb.Value {
	return s.GetFields()[name].GetListValue().GetValues()
}

var errNotInteger = errors.New("not an integer")

func intField(s *structpb.Struct, name string) (int, error) {
	v := numberField(s, name)
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, fmt.Errorf("field %s: %v: %w", name, v, errNotInteger)
	}
	return int(v), nil
}

// #endregion field-helpers
