package config

import "github.com/nutrimatch/backend/internal/domain"

// Keyword sets behind the default dietary restrictions. Matching is done on
// normalized food names, so accents here are optional.
var (
	meatAndFishKeywords = []string{
		"carne", "frango", "galinha", "peru", "pato", "boi", "bovina", "vitela", "porco", "suina",
		"bacon", "presunto", "salame", "linguica", "salsicha", "mortadela", "peito de peru",
		"figado", "coracao", "cordeiro", "peixe", "atum", "sardinha", "salmao", "tilapia",
		"bacalhau", "merluza", "camarao", "lagosta", "siri", "caranguejo", "marisco", "lula",
		"polvo", "mexilhao", "ostra", "hamburguer", "almondega", "file", "picanha", "costela",
	}
	dairyKeywords = []string{
		"leite", "queijo", "iogurte", "manteiga", "requeijao", "creme de leite", "nata",
		"coalhada", "ricota", "mussarela", "muçarela", "parmesao", "cottage", "whey",
		"doce de leite", "leite condensado", "chantilly",
	}
	animalProductKeywords = []string{
		"ovo", "ovos", "gema", "clara de ovo", "omelete", "gelatina", "banha",
	}
	glutenKeywords = []string{
		"trigo", "farinha de trigo", "pao", "macarrao", "massa", "cevada", "centeio", "malte",
		"biscoito", "bolacha", "bolo", "torrada", "cuscuz marroquino", "semolina", "seitan",
		"pizza", "lasanha", "croissant",
	}
)

// DefaultRestrictions returns the built-in restriction table. Vegan extends
// the vegetarian set with dairy and other animal products.
func DefaultRestrictions() []domain.RestrictionRule {
	return []domain.RestrictionRule{
		{Label: "vegetariano", ExcludedNameKeywords: concat(meatAndFishKeywords)},
		{Label: "vegano", ExcludedNameKeywords: concat(meatAndFishKeywords, dairyKeywords, animalProductKeywords)},
		{Label: "sem glúten", ExcludedNameKeywords: concat(glutenKeywords)},
		{Label: "sem lactose", ExcludedNameKeywords: concat(dairyKeywords)},
	}
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
