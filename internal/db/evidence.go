package db

import (
	"encoding/json"

	"github.com/klauspost/compress/zstd"

	"perilwatch/internal/types"
)

// Claim evidence is the full weather analysis that justified the claim.
// Serialized analyses for long lookback windows run to tens of kilobytes of
// repetitive JSON, so they are zstd-compressed before storage.

var (
	evidenceEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	evidenceDecoder, _ = zstd.NewReader(nil)
)

// EncodeEvidence serializes and compresses a weather analysis for storage in
// the claims table.
func EncodeEvidence(analysis *types.WeatherAnalysis) ([]byte, error) {
	raw, err := json.Marshal(analysis)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to serialize claim evidence", err)
	}
	return evidenceEncoder.EncodeAll(raw, nil), nil
}

// DecodeEvidence decompresses and deserializes a stored evidence blob.
func DecodeEvidence(blob []byte) (*types.WeatherAnalysis, error) {
	raw, err := evidenceDecoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to decompress claim evidence", err)
	}
	var analysis types.WeatherAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to deserialize claim evidence", err)
	}
	return &analysis, nil
}
