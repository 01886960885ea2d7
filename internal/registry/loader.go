package registry

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/HSLdevcom/digitransit-geocoder/internal/store"
)

// Column names expected in the registry CSV header.
const (
	colStreet         = "katunimi"
	colStreetSv       = "gatan"
	colNumber         = "osoitenumero"
	colNumber2        = "osoitenumero2"
	colUnit           = "kiinteiston_jakokirjain"
	colMunicipality   = "kaupunki"
	colMunicipalitySv = "staden"
	colNorthing       = "n"
	colEasting        = "e"
)

// Load parses a registry CSV from r. The file is latin-1 encoded with
// semicolon separators and GK25FIN coordinates, which are converted to
// WGS84 on the way in. Rows without coordinates are dropped.
func Load(r io.Reader) ([]store.RegistryAddressDoc, error) {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "registry: read csv header")
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colStreet, colNumber, colMunicipality, colNorthing, colEasting} {
		if _, ok := idx[required]; !ok {
			return nil, eris.Errorf("registry: csv is missing column %q", required)
		}
	}

	log := zap.L().With(zap.String("component", "registry.loader"))

	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var docs []store.RegistryAddressDoc
	var dropped int
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "registry: read csv line %d", line)
		}

		northing, errN := strconv.ParseFloat(field(row, colNorthing), 64)
		easting, errE := strconv.ParseFloat(field(row, colEasting), 64)
		if errN != nil || errE != nil {
			dropped++
			continue
		}
		lon, lat := GK25ToWGS84(northing, easting)

		number := 0
		if s := field(row, colNumber); s != "" {
			number, err = strconv.Atoi(s)
			if err != nil {
				log.Info("address with unparseable house number",
					zap.Int("line", line),
					zap.String("number", s),
				)
				number = 0
			}
		} else {
			log.Info("address without house number", zap.Int("line", line))
		}

		number2 := number
		if s := field(row, colNumber2); s != "" {
			if v, err := strconv.Atoi(s); err == nil {
				number2 = v
			}
		}

		docs = append(docs, store.RegistryAddressDoc{
			Street:         field(row, colStreet),
			StreetSv:       field(row, colStreetSv),
			Municipality:   field(row, colMunicipality),
			MunicipalitySv: field(row, colMunicipalitySv),
			Unit:           strings.ToLower(field(row, colUnit)),
			Number:         number,
			Number2:        number2,
			LeftSide:       number%2 == 0,
			Lon:            lon,
			Lat:            lat,
		})
	}

	if dropped > 0 {
		log.Warn("dropped rows without coordinates", zap.Int("dropped", dropped))
	}

	return docs, nil
}

// LoadFile reads a registry CSV from disk.
func LoadFile(path string) ([]store.RegistryAddressDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: open %s", path)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}
