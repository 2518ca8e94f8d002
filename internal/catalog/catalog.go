// Package catalog is the static, read-only product list. Products carry a
// base price; administrators can shadow it with a per-slug override, which is
// the pricing service's job, not this package's.
package catalog

type Product struct {
	Slug           string `json:"slug"`
	Name           string `json:"name"`
	Amount         string `json:"amount"` // variant label, e.g. "10mg"
	BasePriceCents int64  `json:"basePriceCents"`
}

var products = []Product{
	{Slug: "semaglutide-5mg", Name: "Semaglutide", Amount: "5mg", BasePriceCents: 9900},
	{Slug: "semaglutide-10mg", Name: "Semaglutide", Amount: "10mg", BasePriceCents: 14900},
	{Slug: "tirzepatide-30mg", Name: "Tirzepatide", Amount: "30mg", BasePriceCents: 19900},
	{Slug: "retatrutide-10mg", Name: "Retatrutide", Amount: "10mg", BasePriceCents: 16900},
	{Slug: "bpc-157-10mg", Name: "BPC-157", Amount: "10mg", BasePriceCents: 7900},
	{Slug: "tb-500-10mg", Name: "TB-500", Amount: "10mg", BasePriceCents: 8900},
	{Slug: "mots-c-10mg", Name: "Mots-C", Amount: "10mg", BasePriceCents: 8900},
	{Slug: "ghk-cu-50mg", Name: "GHK-Cu", Amount: "50mg", BasePriceCents: 6900},
	{Slug: "ipamorelin-5mg", Name: "Ipamorelin", Amount: "5mg", BasePriceCents: 5900},
	{Slug: "cjc-1295-no-dac-5mg", Name: "CJC-1295 (no DAC)", Amount: "5mg", BasePriceCents: 6400},
	{Slug: "tesamorelin-10mg", Name: "Tesamorelin", Amount: "10mg", BasePriceCents: 10900},
	{Slug: "epithalon-10mg", Name: "Epithalon", Amount: "10mg", BasePriceCents: 5400},
	{Slug: "melanotan-ii-10mg", Name: "Melanotan-II", Amount: "10mg", BasePriceCents: 4900},
	{Slug: "pt-141-10mg", Name: "PT-141", Amount: "10mg", BasePriceCents: 5900},
	{Slug: "nad-plus-500mg", Name: "NAD+", Amount: "500mg", BasePriceCents: 12900},
	{Slug: "glutathione-600mg", Name: "Glutathione", Amount: "600mg", BasePriceCents: 6900},
}

var bySlug = func() map[string]Product {
	m := make(map[string]Product, len(products))
	for _, p := range products {
		m[p.Slug] = p
	}
	return m
}()

func All() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

func BySlug(slug string) (Product, bool) {
	p, ok := bySlug[slug]
	return p, ok
}

func Slugs() []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Slug)
	}
	return out
}
