package spell

// DomainTerms is the built-in exception list: scientific and medical
// vocabulary plus common Latin abbreviations that must never be reported as
// misspellings.
var DomainTerms = []string{
	"covid", "sars", "cov", "coronavirus", "pandemic", "epidemiology",
	"pathogen", "asymptomatic", "comorbidity", "cytokine", "genomic",
	"immunology", "nosocomial", "pathogenesis", "prophylaxis", "quarantine",
	"respiratory", "transmission", "vaccine", "viral", "virologic",
	"clinical", "diagnosis", "therapeutic", "protocol", "syndrome",
	"symptoms", "infection", "infectious", "mortality", "morbidity",
	"antibody", "antibodies", "immune", "immunization", "prevention",
	"analysis", "study", "research", "methodology", "hypothesis",
	"data", "results", "conclusion", "findings", "evidence",
	"statistical", "significant", "population", "sample", "cohort",
	"et", "al", "ie", "eg", "vs", "etc",
}
