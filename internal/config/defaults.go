package config

const defaultPrompt = `I have a list of scientific articles. For each article, please classify if it is related to "condensed matter physics".
You MUST provide the output as a JSON array of objects. Do not include any text, conversation, or explanations before or after the JSON array.
Each object in the JSON array should have a "title" and a "decision" key. The decision should be "YES" if it is related to the specified fields, or "NO" if it is not.`

var defaultInclude = []string{
	"condensed matter", "solid state", "ARPES", "photoemission", "band structure",
	"Fermi surface", "Brillouin zone", "spin-orbit", "quantum oscillation",
	"quantum Hall", "Landau level", "topological", "topology", "Weyl", "Dirac",
	"Chern", "Berry phase", "Kondo", "Mott", "Hubbard", "Heisenberg model",
	"spin liquid", "spin ice", "skyrmion", "nematic", "stripe order",
	"charge density wave", "CDW", "spin density wave", "SDW", "magnetism",
	"magnetic order", "antiferromagnetic", "ferromagnetic", "superconductivity",
	"superconductor", "Meissner", "quasiparticle", "phonon", "magnon", "exciton",
	"polariton", "crystal field", "lattice", "moiré", "twisted bilayer",
	"graphene", "2D material", "van der Waals", "correlated electrons",
	"quantum critical", "metal-insulator", "quantum phase transition",
	"susceptibility", "neutron scattering", "x-ray diffraction", "STM", "STS",
	"Kagome", "photon",
}

var defaultExclude = []string{
	"congress", "forest", "climate", "lava", "protein", "archeologist", "mummy",
	"cancer", "tumor", "immune", "immunology", "inflammation", "antibody",
	"cytokine", "gene", "tissue", "genome", "genetic", "transcriptome", "rna",
	"mrna", "mirna", "crisper", "mutation", "cell", "mouse", "zebrafish",
	"neuron", "neural", "brain", "synapse", "microbiome", "gut", "pathogen",
	"bacteria", "virus", "viral", "infection", "epidemiology", "clinical",
	"therapy", "therapeutic", "disease", "patient", "biopsy", "in vivo",
	"in vitro", "drug", "pharmacology", "oncology",
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Oracle: OracleConfig{
			PrimaryModel:   "gemini-2.0-flash",
			FallbackModel:  "gemini-1.5-flash-latest",
			MaxAttempts:    3,
			BackoffSeconds: 60,
			SessionScope:   ScopePerSource,
		},
		Pipeline: PipelineConfig{OnOracleExhaustion: ExhaustAbortRun},
		Output: OutputConfig{
			Dir:          ".",
			BaseFilename: "filtered_feed",
			HTML:         true,
			DisplayZones: []string{"Asia/Seoul", "America/Chicago"},
		},
		State: StateConfig{File: "last_failed_source.txt"},
		Rulesets: []RulesetConfig{
			{
				Name:    "condensed-matter",
				Match:   "substring",
				Include: defaultInclude,
				Exclude: defaultExclude,
				Prompt:  defaultPrompt,
			},
		},
		Sources: []SourceConfig{
			{Name: "Nature", URL: "https://www.nature.com/nature.rss", Ruleset: "condensed-matter"},
			{Name: "Nature_Physics", URL: "https://feeds.nature.com/nphys/rss/current", Ruleset: "condensed-matter"},
			{Name: "Nature_Materials", URL: "https://feeds.nature.com/nmat/rss/current", Ruleset: "condensed-matter"},
			{Name: "Nature_Communications", URL: "https://www.nature.com/ncomms.rss", Ruleset: "condensed-matter"},
			{Name: "npj_QuantumMaterials", URL: "https://www.nature.com/npjquantmats.rss", Ruleset: "condensed-matter"},
			{Name: "Science", URL: "https://www.science.org/action/showFeed?type=etoc&feed=rss&jc=science", Ruleset: "condensed-matter"},
			{Name: "Science_Advances", URL: "https://www.science.org/action/showFeed?type=etoc&feed=rss&jc=sciadv", Ruleset: "condensed-matter"},
		},
	}
}
