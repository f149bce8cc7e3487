package molecule

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadLAMDA reads a molecular data file in the Leiden (LAMDA) format:
// comment lines starting with "!", then molecule name, weight, level
// table (index, energy in 1/cm, weight, ...) and the radiative
// transition table (index, upper, lower, A, frequency in GHz, ...).
// Collision blocks after the radiative table are ignored, since level
// populations arrive precomputed.
func LoadLAMDA(filename string) (*Data, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open molecular data file: %v", err)
	}
	defer file.Close()
	d, err := ParseLAMDA(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", filename, err)
	}
	return d, nil
}

// ParseLAMDA parses LAMDA-format molecular data from a reader.
func ParseLAMDA(r io.Reader) (*Data, error) {
	sc := newLineScanner(r)

	name, err := sc.next()
	if err != nil {
		return nil, fmt.Errorf("missing molecule name: %v", err)
	}
	weightLine, err := sc.next()
	if err != nil {
		return nil, fmt.Errorf("missing molecular weight: %v", err)
	}
	weight, err := strconv.ParseFloat(strings.Fields(weightLine)[0], 64)
	if err != nil {
		return nil, fmt.Errorf("bad molecular weight %q: %v", weightLine, err)
	}

	nlev, err := sc.nextInt("level count")
	if err != nil {
		return nil, err
	}
	energy := make([]float64, nlev)
	gstat := make([]float64, nlev)
	for i := 0; i < nlev; i++ {
		fields, err := sc.nextFields("level row", 3)
		if err != nil {
			return nil, err
		}
		// Energies are tabulated in 1/cm; convert to J.
		e, err1 := strconv.ParseFloat(fields[1], 64)
		g, err2 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("bad level row %d: %v", i+1, fields)
		}
		energy[i] = e * 100 * CLight * HPlanck
		gstat[i] = g
	}

	nline, err := sc.nextInt("transition count")
	if err != nil {
		return nil, err
	}
	freq := make([]float64, nline)
	aeinst := make([]float64, nline)
	upper := make([]int, nline)
	lower := make([]int, nline)
	for i := 0; i < nline; i++ {
		fields, err := sc.nextFields("transition row", 5)
		if err != nil {
			return nil, err
		}
		up, err1 := strconv.Atoi(fields[1])
		lo, err2 := strconv.Atoi(fields[2])
		a, err3 := strconv.ParseFloat(fields[3], 64)
		f, err4 := strconv.ParseFloat(fields[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, fmt.Errorf("bad transition row %d: %v", i+1, fields)
		}
		// Level indices are 1-based in the file.
		upper[i] = up - 1
		lower[i] = lo - 1
		freq[i] = f * 1e9
		aeinst[i] = a
	}

	return NewData(strings.Fields(name)[0], weight*AMU, energy, gstat, freq, aeinst, upper, lower)
}

// lineScanner yields non-comment, non-empty lines.
type lineScanner struct {
	sc *bufio.Scanner
}

func newLineScanner(r io.Reader) *lineScanner {
	return &lineScanner{sc: bufio.NewScanner(r)}
}

func (l *lineScanner) next() (string, error) {
	for l.sc.Scan() {
		line := strings.TrimSpace(l.sc.Text())
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		return line, nil
	}
	if err := l.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (l *lineScanner) nextInt(what string) (int, error) {
	line, err := l.next()
	if err != nil {
		return 0, fmt.Errorf("missing %s: %v", what, err)
	}
	n, err := strconv.Atoi(strings.Fields(line)[0])
	if err != nil {
		return 0, fmt.Errorf("bad %s %q: %v", what, line, err)
	}
	return n, nil
}

func (l *lineScanner) nextFields(what string, minFields int) ([]string, error) {
	line, err := l.next()
	if err != nil {
		return nil, fmt.Errorf("missing %s: %v", what, err)
	}
	fields := strings.Fields(line)
	if len(fields) < minFields {
		return nil, fmt.Errorf("%s %q: expected at least %d fields", what, line, minFields)
	}
	return fields, nil
}
