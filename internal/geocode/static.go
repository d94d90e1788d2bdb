package geocode

import (
	"context"
	"sort"
	"strings"

	"carpool/internal/domain"
)

// czechCities are the well-known places the static table knows.
var czechCities = map[string]domain.Coordinate{
	"Praha":              {Lat: 50.0755, Lng: 14.4378},
	"Brno":               {Lat: 49.1951, Lng: 16.6068},
	"Ostrava":            {Lat: 49.8209, Lng: 18.2625},
	"Plzeň":              {Lat: 49.7384, Lng: 13.3736},
	"Liberec":            {Lat: 50.7663, Lng: 15.0543},
	"Olomouc":            {Lat: 49.5938, Lng: 17.2509},
	"Ústí nad Labem":     {Lat: 50.6607, Lng: 14.0323},
	"České Budějovice":   {Lat: 48.9747, Lng: 14.4743},
	"Hradec Králové":     {Lat: 50.2092, Lng: 15.8328},
	"Pardubice":          {Lat: 50.0343, Lng: 15.7812},
	"Zlín":               {Lat: 49.2265, Lng: 17.6707},
	"Havířov":            {Lat: 49.7798, Lng: 18.4369},
	"Kladno":             {Lat: 50.1473, Lng: 14.1028},
	"Most":               {Lat: 50.5030, Lng: 13.6362},
	"Opava":              {Lat: 49.9387, Lng: 17.9026},
	"Frýdek-Místek":      {Lat: 49.6881, Lng: 18.3536},
	"Karviná":            {Lat: 49.8540, Lng: 18.5417},
	"Jihlava":            {Lat: 49.3961, Lng: 15.5912},
	"Děčín":              {Lat: 50.7736, Lng: 14.1960},
	"Teplice":            {Lat: 50.6404, Lng: 13.8245},
	"Chomutov":           {Lat: 50.4605, Lng: 13.4178},
	"Jablonec nad Nisou": {Lat: 50.7243, Lng: 15.1711},
	"Mladá Boleslav":     {Lat: 50.4114, Lng: 14.9032},
	"Prostějov":          {Lat: 49.4719, Lng: 17.1118},
	"Přerov":             {Lat: 49.4551, Lng: 17.4509},
	"Česká Lípa":         {Lat: 50.6856, Lng: 14.5377},
	"Třebíč":             {Lat: 49.2149, Lng: 15.8817},
	"Uherské Hradiště":   {Lat: 49.0698, Lng: 17.4597},
	"Kolín":              {Lat: 50.0281, Lng: 15.2006},
	"Písek":              {Lat: 49.3088, Lng: 14.1475},
	"Trutnov":            {Lat: 50.5610, Lng: 15.9127},
	"Vsetín":             {Lat: 49.3387, Lng: 17.9962},
	"Valašské Meziříčí":  {Lat: 49.4718, Lng: 17.9711},
}

var foldDiacritics = strings.NewReplacer(
	"á", "a", "č", "c", "ď", "d", "é", "e", "ě", "e", "í", "i", "ň", "n",
	"ó", "o", "ř", "r", "š", "s", "ť", "t", "ú", "u", "ů", "u", "ý", "y", "ž", "z",
)

// foldKey lower-cases, collapses whitespace and strips Czech diacritics.
func foldKey(place string) string {
	return foldDiacritics.Replace(strings.Join(strings.Fields(strings.ToLower(place)), " "))
}

// Static resolves names from a fixed table. Lookups ignore case and Czech
// diacritics, so "plzen" finds "Plzeň". It also serves as the fallback when
// no remote provider is configured.
type Static struct {
	byKey map[string]domain.Coordinate
	names []string
}

// NewStatic builds a table from extra entries layered over the Czech city list.
func NewStatic(extra map[string]domain.Coordinate) *Static {
	s := &Static{byKey: make(map[string]domain.Coordinate)}
	for name, c := range czechCities {
		s.add(name, c)
	}
	for name, c := range extra {
		s.add(name, c)
	}
	sort.Strings(s.names)
	return s
}

func (s *Static) add(name string, c domain.Coordinate) {
	key := foldKey(name)
	if _, exists := s.byKey[key]; !exists {
		s.names = append(s.names, name)
	}
	s.byKey[key] = c
}

// Geocode implements the provider contract; it never fails.
func (s *Static) Geocode(_ context.Context, place string) (domain.Coordinate, bool, error) {
	c, ok := s.byKey[foldKey(place)]
	return c, ok, nil
}

// Names returns the display names of all known places, sorted.
func (s *Static) Names() []string {
	return append([]string(nil), s.names...)
}

// Provider is the geocoding contract shared by Static, NominatimClient and Chain.
type Provider interface {
	Geocode(ctx context.Context, place string) (domain.Coordinate, bool, error)
}

// Chain asks each provider in turn and returns the first hit. An error from
// one provider is remembered and returned only if no later provider finds
// the place.
type Chain []Provider

// Geocode implements Provider.
func (c Chain) Geocode(ctx context.Context, place string) (domain.Coordinate, bool, error) {
	var firstErr error
	for _, p := range c {
		coord, found, err := p.Geocode(ctx, place)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if found {
			return coord, true, nil
		}
	}
	return domain.Coordinate{}, false, firstErr
}
