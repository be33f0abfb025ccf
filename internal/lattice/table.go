package lattice

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Table is a parsed twiss table: numeric header values and optics columns.
type Table struct {
	Header map[string]float64
	Optics *Optics
}

var optionalColumns = map[string]bool{
	ColAlfX: true, ColAlfY: true, ColDPX: true, ColDY: true, ColDPY: true, ColK1L: true,
}

// ReadTableFile opens path and parses it with ReadTable.
func ReadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTable(f)
}

// ReadTable parses a TFS-style table. Lines starting with '@' carry header
// scalars ("@ GAMMA %le 100"), the '*' line names the columns, the '$' line
// carries formats and is ignored. Non-numeric header values and columns are
// skipped. Missing optional columns read as zero.
func ReadTable(r io.Reader) (*Table, error) {
	header := make(map[string]float64)
	var names []string
	data := make(map[string][]float64)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch fields[0] {
		case "@":
			if len(fields) < 4 {
				continue
			}
			v, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				continue
			}
			header[strings.ToUpper(fields[1])] = v
		case "*":
			names = make([]string, len(fields)-1)
			for i, f := range fields[1:] {
				names[i] = strings.ToUpper(f)
			}
		case "$":
		default:
			if names == nil {
				return nil, fmt.Errorf("%w: line %d: data row before column names", ErrInvalidOptics, line)
			}
			if len(fields) != len(names) {
				return nil, fmt.Errorf("%w: line %d: %d fields, want %d", ErrInvalidOptics, line, len(fields), len(names))
			}
			for i, f := range fields {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					continue
				}
				data[names[i]] = append(data[names[i]], v)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	rows := len(data[ColLength])
	cols := make(map[string][]float64, len(Columns))
	for _, name := range Columns {
		v, ok := data[name]
		if !ok {
			if !optionalColumns[name] {
				return nil, fmt.Errorf("%w: missing column %s", ErrInvalidOptics, name)
			}
			v = make([]float64, rows)
		}
		cols[name] = v
	}

	optics, err := NewOptics(cols)
	if err != nil {
		return nil, err
	}
	return &Table{Header: header, Optics: optics}, nil
}
