package signal

import (
	"bufio"
	"bytes"
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/duskreel/clipper/internal/apierrors"
)

const rmsMetadataKey = "lavfi.astats.Overall.RMS_level="

// ComputeAudioEnergy implements §4.3.3: parse the RMS-level-per-frame stream
// ffmpeg's astats filter prints, bucket the samples evenly across the
// clip's integer seconds, average each bucket, and normalize to [0, 1]. A
// line carrying the RMS key whose value fails to parse is treated as a
// toolchain failure rather than silently contributing a zero.
func (c *Client) ComputeAudioEnergy(ctx context.Context, audioPath string, duration float64) ([]float64, error) {
	if duration <= 0 {
		return nil, apierrors.New(apierrors.ToolchainError, "audio energy scoring requires a positive duration", nil)
	}

	out, err := c.media.RunAstatsRMS(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	rms, err := parseRMSLevels(out)
	if err != nil {
		return nil, err
	}
	if len(rms) == 0 {
		return nil, apierrors.New(apierrors.ToolchainError, "no RMS samples parsed from astats output", nil)
	}

	numSeconds := int(duration)
	if numSeconds == 0 {
		numSeconds = 1
	}
	ratio := float64(len(rms)) / duration

	scores := make([]float64, numSeconds)
	for i := 0; i < numSeconds; i++ {
		startIdx := int(float64(i) * ratio)
		endIdx := int(float64(i+1) * ratio)
		if endIdx > len(rms) {
			endIdx = len(rms)
		}
		if startIdx >= endIdx {
			continue
		}
		sum := 0.0
		for _, v := range rms[startIdx:endIdx] {
			sum += v
		}
		scores[i] = sum / float64(endIdx-startIdx)
	}
	normalize(scores)
	return scores, nil
}

// parseRMSLevels scans ffmpeg's ametadata-print output for RMS_level lines,
// converting each dBFS level to linear amplitude (10^(dB/20)), so louder
// frames give larger values. A "-inf" sample (pure silence) contributes 0;
// any other unparseable value fails the whole extraction, per the Design Notes' deliberate choice not to
// mask a broken astats pipeline behind a silently-zeroed signal.
func parseRMSLevels(output []byte) ([]float64, error) {
	var levels []float64
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, rmsMetadataKey)
		if idx < 0 {
			continue
		}
		raw := strings.TrimSpace(line[idx+len(rmsMetadataKey):])
		if raw == "-inf" {
			levels = append(levels, 0)
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apierrors.New(apierrors.ToolchainError, "failed to parse astats RMS level: "+raw, err)
		}
		levels = append(levels, math.Pow(10, v/20))
	}
	if err := scanner.Err(); err != nil {
		return nil, apierrors.New(apierrors.ToolchainError, "failed to read astats output", err)
	}
	return levels, nil
}
