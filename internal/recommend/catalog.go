// Package recommend maps a diagnostic profile to product recommendations and
// personalizes them through the language model.
package recommend

import "github.com/LionGab/lyla-erl/internal/diagnostic"

// ProductType identifies one of the fixed product archetypes.
type ProductType string

const (
	ProductMentoria       ProductType = "mentoria"
	ProductCursoDigital   ProductType = "curso-digital"
	ProductComunidadePaga ProductType = "comunidade-paga"
	ProductConsultoria    ProductType = "consultoria"
	ProductProdutoFisico  ProductType = "produto-fisico"
	ProductServico        ProductType = "servico"
)

// PriceRange is the recommended price band in BRL.
type PriceRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Suggested float64 `json:"suggested"`
}

// Product is one recommendation card.
type Product struct {
	Type             ProductType `json:"type"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	WhyRecommended   []string    `json:"whyRecommended"`
	PriceRange       PriceRange  `json:"priceRange"`
	Effort           string      `json:"effort"` // baixo, medio, alto
	TimeToLaunch     string      `json:"timeToLaunch"`
	PotentialRevenue string      `json:"potentialRevenue"`
}

// Result is the full recommendation set for a profile.
type Result struct {
	Profile            diagnostic.Profile `json:"profile"`
	TopRecommendations []Product          `json:"topRecommendations"`
	Reasoning          string             `json:"reasoning"`
	NextSteps          []string           `json:"nextSteps"`
}

// profileMatrix fixes which products each profile sees, in display order.
var profileMatrix = map[diagnostic.Profile][]ProductType{
	diagnostic.ProfileA: {ProductCursoDigital, ProductComunidadePaga, ProductMentoria},
	diagnostic.ProfileB: {ProductMentoria, ProductConsultoria, ProductProdutoFisico},
}

var productDetails = map[ProductType]Product{
	ProductCursoDigital: {
		Type:             ProductCursoDigital,
		Name:             "Curso Digital",
		Description:      "Produto digital escalável que pode ser vendido repetidamente sem custo adicional de produção.",
		WhyRecommended:   []string{"Baixo investimento inicial", "Escalável", "Pode ser automatizado"},
		PriceRange:       PriceRange{Min: 97, Max: 997, Suggested: 297},
		Effort:           "medio",
		TimeToLaunch:     "4-8 semanas",
		PotentialRevenue: "alto",
	},
	ProductComunidadePaga: {
		Type:             ProductComunidadePaga,
		Name:             "Comunidade Paga",
		Description:      "Grupo exclusivo com acesso a conteúdo, networking e suporte contínuo.",
		WhyRecommended:   []string{"Receita recorrente", "Alto engajamento", "Crescimento orgânico"},
		PriceRange:       PriceRange{Min: 47, Max: 297, Suggested: 97},
		Effort:           "medio",
		TimeToLaunch:     "2-4 semanas",
		PotentialRevenue: "medio",
	},
	ProductMentoria: {
		Type:             ProductMentoria,
		Name:             "Mentoria Individual",
		Description:      "Acompanhamento personalizado para desenvolvimento específico do negócio.",
		WhyRecommended:   []string{"Alto valor agregado", "Personalizado", "Alto ticket médio"},
		PriceRange:       PriceRange{Min: 500, Max: 5000, Suggested: 1500},
		Effort:           "alto",
		TimeToLaunch:     "1-2 semanas",
		PotentialRevenue: "alto",
	},
	ProductConsultoria: {
		Type:             ProductConsultoria,
		Name:             "Consultoria",
		Description:      "Serviço especializado para resolver problemas específicos do negócio.",
		WhyRecommended:   []string{"Alto valor", "Especializado", "Resultados rápidos"},
		PriceRange:       PriceRange{Min: 1000, Max: 10000, Suggested: 3000},
		Effort:           "alto",
		TimeToLaunch:     "1 semana",
		PotentialRevenue: "alto",
	},
	ProductProdutoFisico: {
		Type:             ProductProdutoFisico,
		Name:             "Produto Físico",
		Description:      "Produto tangível com marca própria ou dropshipping.",
		WhyRecommended:   []string{"Alto ticket médio", "Demanda real", "Escalável"},
		PriceRange:       PriceRange{Min: 50, Max: 500, Suggested: 150},
		Effort:           "alto",
		TimeToLaunch:     "8-12 semanas",
		PotentialRevenue: "medio",
	},
	ProductServico: {
		Type:             ProductServico,
		Name:             "Serviço Profissional",
		Description:      "Prestação de serviços especializados (design, copywriting, etc.).",
		WhyRecommended:   []string{"Baixa barreira de entrada", "Demanda constante", "Flexível"},
		PriceRange:       PriceRange{Min: 200, Max: 2000, Suggested: 500},
		Effort:           "medio",
		TimeToLaunch:     "1-2 semanas",
		PotentialRevenue: "medio",
	},
}

// ProductsFor returns the catalog entries for the profile's fixed matrix.
func ProductsFor(profile diagnostic.Profile) []Product {
	types, ok := profileMatrix[profile]
	if !ok {
		types = profileMatrix[diagnostic.ProfileA]
	}
	out := make([]Product, 0, len(types))
	for _, t := range types {
		out = append(out, productDetails[t])
	}
	return out
}
