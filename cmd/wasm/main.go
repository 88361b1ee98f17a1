//go:build js && wasm

package main

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/himanishpuri/audiomatch/internal/audio"
	"github.com/himanishpuri/audiomatch/internal/fingerprint"
	"github.com/himanishpuri/audiomatch/internal/match"
	"github.com/himanishpuri/audiomatch/internal/model"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorFingerprint
	ErrorDegenerate
)

// readSamples converts a JS Array or Float64Array into a mono source.
func readSamples(data, rate, channels js.Value) (audio.Source, error) {
	if data.Type() != js.TypeObject {
		return nil, errors.New("audio data must be an Array or Float64Array")
	}
	if rate.Type() != js.TypeNumber || rate.Float() <= 0 {
		return nil, errors.New("sampleRate must be a positive number")
	}
	if channels.Type() != js.TypeNumber {
		return nil, errors.New("channels must be a number")
	}

	length := data.Length()
	samples := make([]float64, length)
	for i := 0; i < length; i++ {
		v := data.Index(i)
		if v.Type() != js.TypeNumber {
			return nil, fmt.Errorf("element %d is not a number", i)
		}
		samples[i] = v.Float()
	}

	return audio.NewInterleavedSource(samples, channels.Int(), rate.Float())
}

// compareSamples(audioA, rateA, channelsA, audioB, rateB, channelsB[, threshold])
// Returns: {error: number, data: object | string}
func compareSamples(this js.Value, args []js.Value) any {
	if len(args) < 6 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 6 arguments: audioA, sampleRateA, channelsA, audioB, sampleRateB, channelsB")
	}

	cfg := match.DefaultConfig()
	if len(args) > 6 && args[6].Type() == js.TypeNumber {
		cfg.ScoreThreshold = args[6].Float()
	}

	ctx := context.Background()
	var files [2]*model.FileFingerprint
	for i := range files {
		src, err := readSamples(args[i*3], args[i*3+1], args[i*3+2])
		if err != nil {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("file %d: %v", i+1, err))
		}
		ff, err := fingerprint.FingerprintSource(ctx, src, fmt.Sprintf("file%d", i+1), cfg.Fingerprint)
		if err != nil {
			return makeErrorResponse(ErrorFingerprint, err.Error())
		}
		files[i] = ff
	}

	res, err := match.Compare(files[0], files[1], cfg)
	if errors.Is(err, model.ErrDegenerateInput) {
		return makeErrorResponse(ErrorDegenerate, err.Error())
	}
	if err != nil {
		return makeErrorResponse(ErrorFingerprint, err.Error())
	}

	data := js.Global().Get("Object").New()
	data.Set("matched", res.Matched())
	data.Set("score", res.Score)
	data.Set("maxOffset", res.MaxOffset)
	data.Set("minDuration", res.MinDuration)
	data.Set("peakOffsetSeconds", res.PeakOffsetSeconds)

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")

	js.Global().Set("compareSamples", js.FuncOf(compareSamples))

	if window := js.Global().Get("window"); !window.IsUndefined() {
		event := js.Global().Get("CustomEvent").New("wasmReady", js.Global().Get("Object").New())
		window.Call("dispatchEvent", event)
	}

	if !console.IsUndefined() {
		console.Call("log", "audiomatch WASM module ready")
	}

	select {}
}
