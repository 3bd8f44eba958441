// Package intent turns short free-text questions into planner calls using a
// fixed keyword vocabulary. English and Spanish keywords are recognised.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind names a recognised request
type Kind string

const (
	RouteBlock        Kind = "route_block"
	ComponentMissing  Kind = "component_missing"
	ComponentStockout Kind = "component_stockout"
	SKUMissing        Kind = "sku_missing"
	ImpactedBySKU     Kind = "impacted_by_sku"
	Coverage          Kind = "coverage"
	Fallback          Kind = "fallback"
)

// Horizon bounds for coverage requests, in days
const (
	DefaultHorizonDays = 7
	MinHorizonDays     = 1
	MaxHorizonDays     = 60
)

var (
	skuPattern   = regexp.MustCompile(`(?i)product_\d+`)
	plantPattern = regexp.MustCompile(`(?i)plant_\d+`)
	daysPattern  = regexp.MustCompile(`(\d+)\s*(day|día|dias|días)?`)

	missingWords   = regexp.MustCompile(`missing|out of stock|delay|late|shortage|falta|agotad|retras|sin stock`)
	componentWords = regexp.MustCompile(`component|componente`)
	routeWords     = regexp.MustCompile(`route|ruta`)
	blockedWords   = regexp.MustCompile(`blocked|bloquead|closed|cerrad`)
	coverageWords  = regexp.MustCompile(`coverage|stockouts?|predict|horizon|riesgo|alerta`)
)

// Intent is a parsed request. Only the fields relevant to Kind are set.
type Intent struct {
	Kind    Kind
	Raw     string
	SKU     string
	Code    string
	Origin  string
	Dest    string
	Horizon int
}

// Parse classifies text. Rules are tried in a fixed order and the first
// match wins; ids keep the casing they were typed with.
func Parse(text string) Intent {
	raw := strings.TrimSpace(text)
	t := strings.ToLower(raw)
	skus := skuPattern.FindAllString(raw, -1)
	plants := plantPattern.FindAllString(raw, -1)

	in := Intent{Kind: Fallback, Raw: text}

	switch {
	case routeWords.MatchString(t) && blockedWords.MatchString(t):
		in.Kind = RouteBlock
		if len(plants) >= 1 {
			in.Origin = plants[0]
		}
		if len(plants) >= 2 {
			in.Dest = plants[1]
		}
		if len(skus) > 0 {
			in.SKU = skus[0]
		}

	case componentWords.MatchString(t) && missingWords.MatchString(t) && len(skus) > 0:
		in.Kind = ComponentMissing
		in.Code = skus[0]

	case componentWords.MatchString(t) && mentionsSimulation(t) && len(skus) > 0:
		in.Kind = ComponentStockout
		in.Code = skus[0]

	case missingWords.MatchString(t) && len(skus) > 0:
		in.Kind = SKUMissing
		in.SKU = skus[0]

	case (strings.Contains(t, "affected") || strings.Contains(t, "clientes")) && len(skus) > 0:
		in.Kind = ImpactedBySKU
		in.SKU = skus[0]

	case coverageWords.MatchString(t):
		in.Kind = Coverage
		in.Horizon = horizonFrom(t)
	}

	return in
}

func mentionsSimulation(t string) bool {
	for _, w := range []string{"stockout", "simulate", "simular", "falt"} {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}

func horizonFrom(t string) int {
	m := daysPattern.FindStringSubmatch(t)
	if m == nil {
		return DefaultHorizonDays
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return MaxHorizonDays
	}
	return ClampHorizon(n)
}

// ClampHorizon bounds a day count to [MinHorizonDays, MaxHorizonDays]
func ClampHorizon(days int) int {
	if days < MinHorizonDays {
		return MinHorizonDays
	}
	if days > MaxHorizonDays {
		return MaxHorizonDays
	}
	return days
}
