package bayes

import (
	"encoding/binary"
	"math"

	"bayesab/domain/core"
)

// Fingerprint hashes everything that determines a test's draws and
// statistics: the family, prior, both samples, draw count, seed and reported
// probabilities. Equal fingerprints mean a rerun reproduces the result.
func Fingerprint(prior PriorSpec, sampleA, sampleB []float64, count int, seed uint64, opts CompareOptions) core.Hash {
	buf := make([]byte, 0, 64+8*(len(sampleA)+len(sampleB)))

	buf = appendString(buf, string(prior.Distribution()))
	params := prior.Params()
	names := params.Names()
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(names)))
	for _, name := range names {
		buf = appendString(buf, name)
		buf = appendFloats(buf, params.Get(name))
	}

	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(sampleA)))
	buf = appendFloats(buf, sampleA...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(sampleB)))
	buf = appendFloats(buf, sampleB...)

	buf = binary.LittleEndian.AppendUint64(buf, uint64(count))
	buf = binary.LittleEndian.AppendUint64(buf, seed)
	buf = appendFloats(buf, opts.Probabilities()...)

	return core.NewHash(buf)
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendFloats(buf []byte, vs ...float64) []byte {
	for _, v := range vs {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}
