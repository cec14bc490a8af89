package rubric

import "github.com/stephaneavril/leo-medico/internal/model"

// Default returns the embedded rubric for ESOXX ONE visits. Phrases are
// stored in normalized form (lowercase, no diacritics) because matching
// runs against normalized transcripts.
func Default() *Rubric {
	return &Rubric{
		Product: Product{
			Canonical: "esoxx one",
			Variants: []string{
				`\beso\s*xx\s*one\b`, `\besox+\s*one\b`, `\besoxx[-\s]*one\b`,
				`\besof+\s*one\b`, `\becox+\s*one\b`, `\besox+\b`, `\besof+\b`,
				`\becox+\b`, `\beso\s*xx\b`, `\besoxxone\b`, `\besoks?\b`,
				`\bes oks?\s*one\b`, `\bes ok\s*one\b`,
			},
		},

		LegacyKeywords: []string{
			"beneficio", "estudio", "mecanismo", "posologia",
			"reflujo", "erge", "ibp", "seguridad",
		},

		Knowledge: []WeightedPhrase{
			// Tier 3: complete, high-value messaging
			{Phrase: "barrera bioadhesiva", Points: 3},
			{Phrase: "un stick despues de cada comida y uno antes de dormir", Points: 3},
			{Phrase: "esperar 30 a 60 minutos sin ingerir alimentos", Points: 3},
			{Phrase: "acido hialuronico condroitina y poloxamero 407", Points: 3},
			// Tier 2: correct partial messaging
			{Phrase: "acido hialuronico", Points: 2},
			{Phrase: "condroitina", Points: 2},
			{Phrase: "poloxamero 407", Points: 2},
			{Phrase: "dispositivo topico esofagico", Points: 2},
			{Phrase: "adyuvante con ibp", Points: 2},
			{Phrase: "beneficio frente a monoterapia con ibp", Points: 2},
			{Phrase: "evidencia clinica", Points: 2},
			{Phrase: "proteccion de la mucosa", Points: 2},
			// Tier 1: generic but on-message
			{Phrase: "reflujo", Points: 1},
			{Phrase: "erge", Points: 1},
			{Phrase: "bien tolerado", Points: 1},
			{Phrase: "accion local", Points: 1},
			{Phrase: "estudio clinico", Points: 1},
			{Phrase: "esoxx one", Points: 1},
		},

		Phases: map[string]PhaseRules{
			model.PhasePreparation: {
				Scoring: []WeightedPhrase{
					{Phrase: "objetivo de la visita", Points: 2},
					{Phrase: "objetivo smart", Points: 2},
					{Phrase: "revise su historial", Points: 1},
					{Phrase: "prepare los materiales", Points: 1},
					{Phrase: "plan de visita", Points: 1},
				},
				Flags: []string{
					"objetivo", "preparar", "antes de la visita",
					"materiales", "historial",
				},
			},
			model.PhaseOpening: {
				Scoring: []WeightedPhrase{
					{Phrase: "como le ha ido con sus pacientes", Points: 2},
					{Phrase: "desde mi ultima visita", Points: 2},
					{Phrase: "perfil de paciente", Points: 2},
					{Phrase: "que le preocupa de sus pacientes", Points: 2},
					{Phrase: "buenos dias doctor", Points: 1},
					{Phrase: "gracias por recibirme", Points: 1},
				},
				Flags: []string{
					"buenos dias", "buenas tardes", "doctor",
					"como le ha ido", "gracias por su tiempo",
				},
				Checklist: []ChecklistItem{
					{
						Name: "enlaza_visita_previa",
						Phrases: []string{
							"desde mi ultima visita",
							"la ultima vez que hablamos",
							"en nuestra visita anterior",
						},
					},
					{
						Name: "indaga_perfil_paciente",
						Phrases: []string{
							"perfil de paciente",
							"que tipo de pacientes",
							"cuantos pacientes con reflujo",
						},
					},
					{
						Name: "establece_agenda",
						Phrases: []string{
							"el motivo de mi visita",
							"hoy quiero hablarle",
							"me gustaria presentarle",
						},
					},
				},
			},
			model.PhasePersuasion: {
				Scoring: []WeightedPhrase{
					{Phrase: "barrera bioadhesiva", Points: 2},
					{Phrase: "un stick despues de cada comida", Points: 2},
					{Phrase: "evidencia clinica", Points: 2},
					{Phrase: "adyuvante con ibp", Points: 2},
					{Phrase: "acido hialuronico", Points: 1},
					{Phrase: "bien tolerado", Points: 1},
					{Phrase: "estudio", Points: 1},
				},
				Flags: []string{
					"mecanismo", "estudio", "evidencia",
					"posologia", "beneficio", "ibp",
				},
				Checklist: []ChecklistItem{
					{
						Name: "mecanismo_correcto",
						Phrases: []string{
							"barrera bioadhesiva",
							"dispositivo topico esofagico",
							"acido hialuronico",
						},
					},
					{
						Name: "posologia_completa",
						Phrases: []string{
							"un stick despues de cada comida",
							"un sobre despues de cada comida",
							"antes de dormir",
							"esperar 30 a 60 minutos",
						},
					},
					{
						Name: "evidencia_trazable",
						Phrases: []string{
							"autor y ano",
							"estudio publicado",
							"endpoint",
							"poblacion del estudio",
						},
					},
					{
						Name: "sinergia_ibp",
						Phrases: []string{
							"adyuvante con ibp",
							"combinado con ibp",
							"frente a monoterapia con ibp",
						},
					},
				},
			},
			model.PhaseClosing: {
				Scoring: []WeightedPhrase{
					{Phrase: "podemos acordar un siguiente paso", Points: 2},
					{Phrase: "le parece si lo prueba", Points: 2},
					{Phrase: "acordamos seguimiento", Points: 2},
					{Phrase: "puedo contar con", Points: 1},
					{Phrase: "siguiente paso", Points: 1},
				},
				Flags: []string{
					"siguiente paso", "acordar", "compromiso",
					"seguimiento", "le parece si",
				},
				Checklist: []ChecklistItem{
					{
						Name: "propone_prueba",
						Phrases: []string{
							"le parece si lo prueba",
							"probarlo con sus proximos pacientes",
							"empezar a considerar",
						},
					},
					{
						Name: "acuerda_seguimiento",
						Phrases: []string{
							"acordamos seguimiento",
							"en mi proxima visita",
							"nos vemos el",
						},
					},
					{
						Name: "pide_compromiso",
						Phrases: []string{
							"puedo contar con",
							"podemos acordar",
							"cuento con usted",
						},
					},
				},
			},
			model.PhasePostAnalysis: {
				Scoring: []WeightedPhrase{
					{Phrase: "que aprendi de esta visita", Points: 2},
					{Phrase: "registrar los acuerdos", Points: 2},
					{Phrase: "anotar los proximos pasos", Points: 1},
					{Phrase: "evaluar la visita", Points: 1},
				},
				Flags: []string{
					"aprendi", "registrar", "anotar",
					"evaluar la visita", "acuerdos",
				},
			},
		},

		Categories: map[string]Category{
			"mecanismo": {
				Weight: 3,
				Phrases: []string{
					"barrera bioadhesiva", "acido hialuronico", "condroitina",
					"poloxamero 407", "dispositivo topico esofagico",
				},
			},
			"eficacia": {
				Weight: 3,
				Phrases: []string{
					"alivio de los sintomas", "mejora de la pirosis",
					"reduccion de la regurgitacion", "eficacia demostrada",
				},
			},
			"evidencia": {
				Weight: 2,
				Phrases: []string{
					"estudio clinico", "autor y ano", "endpoint",
					"poblacion del estudio", "publicado en",
				},
			},
			"uso_posologia": {
				Weight: 3,
				Phrases: []string{
					"un stick despues de cada comida",
					"un sobre despues de cada comida",
					"antes de dormir",
					"esperar 30 a 60 minutos",
					"sin ingerir alimentos o bebidas",
				},
			},
			"diferenciales": {
				Weight: 2,
				Phrases: []string{
					"adyuvante con ibp", "frente a monoterapia",
					"accion local", "sin absorcion sistemica",
				},
			},
			"mensajes_base": {
				Weight: 1,
				Phrases: []string{
					"esoxx one", "reflujo", "erge", "proteccion de la mucosa",
				},
			},
		},

		Signals: Signals{
			Listening: []string{
				"entiendo", "comprendo", "veo que",
				"si entiendo bien", "parafraseando", "que le preocupa",
			},
			Closing: []string{
				"siguiente paso", "podemos acordar", "puedo contar con",
				"le parece si", "empezar a considerar",
			},
			Objection: []string{
				"entiendo su punto", "es una buena pregunta",
				"dejeme aclarar", "comprendo su duda",
				"respecto a su objecion", "me parece valido su punto",
			},
			Absolutes: []string{
				"el mejor", "completamente seguro", "totalmente seguro",
				"no tiene efectos", "para todos",
			},
			Disqualifying: []string{
				"no se", "no tengo idea", "lo invento",
				"no estudie", "no me acuerdo",
			},
			Sensitive: []string{
				"embarazad", "ninos", "pediatr", "descuento",
				"promocion", "3x4", "precio en clinica",
			},
		},

		Thresholds: Thresholds{
			Match:     0.82,
			Legacy:    0.84,
			Sensitive: 0.86,
			Strict:    0.88,
		},

		Risk: Risk{
			EscalateOnRedFlags: true,
		},
	}
}
