package ffmpeg

import (
	"regexp"
	"strconv"
)

var (
	durationRe = regexp.MustCompile(`Duration: (\d{2,}):(\d{2}):(\d{2})\.(\d{2})`)
	timeRe     = regexp.MustCompile(`time=(\d{2,}):(\d{2}):(\d{2})\.(\d{2})`)
)

// ProgressParser extracts encode progress from ffmpeg stderr. ffmpeg
// announces the input duration once near startup and then rewrites a
// status line terminated by carriage returns, so the stream is split on
// both \r and \n and each complete line is matched.
type ProgressParser struct {
	line     []byte
	lastLine string

	duration float64
	elapsed  float64
}

// Feed consumes a chunk of stderr bytes. Safe to call with any chunking,
// down to one byte at a time.
func (p *ProgressParser) Feed(buf []byte) {
	for _, b := range buf {
		if b == '\r' || b == '\n' {
			p.flush()
			continue
		}
		p.line = append(p.line, b)
	}
}

// Flush processes any unterminated trailing line. Call after EOF.
func (p *ProgressParser) Flush() {
	p.flush()
}

func (p *ProgressParser) flush() {
	if len(p.line) == 0 {
		return
	}
	line := string(p.line)
	p.line = p.line[:0]
	p.lastLine = line

	if p.duration == 0 {
		if m := durationRe.FindStringSubmatch(line); m != nil {
			p.duration = clockSeconds(m)
		}
	}
	if m := timeRe.FindStringSubmatch(line); m != nil {
		p.elapsed = clockSeconds(m)
	}
}

// clockSeconds converts matched HH:MM:SS.cc groups to seconds.
func clockSeconds(m []string) float64 {
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	cs, _ := strconv.Atoi(m[4])
	return float64(h)*3600 + float64(min)*60 + float64(s) + float64(cs)*0.01
}

// Duration returns the parsed input duration in seconds, 0 until seen.
func (p *ProgressParser) Duration() float64 {
	return p.duration
}

// Elapsed returns the encoded position in seconds.
func (p *ProgressParser) Elapsed() float64 {
	return p.elapsed
}

// Fraction returns progress in [0, 1]. Zero until the duration is known.
func (p *ProgressParser) Fraction() float64 {
	if p.duration <= 0 {
		return 0
	}
	f := p.elapsed / p.duration
	if f > 1 {
		return 1
	}
	return f
}

// LastLine returns the most recent complete stderr line, which on failure
// usually names the reason.
func (p *ProgressParser) LastLine() string {
	return p.lastLine
}
