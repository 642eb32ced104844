package report

import (
	"github.com/shopspring/decimal"
)

// ScheduleNote is an annex note made of labelled lines and a total
type ScheduleNote struct {
	ID     string             `json:"id"`
	Lignes map[string]*Figure `json:"lignes"`
	Total  Figure             `json:"total"`
}

// noteSpec describes a schedule note. With no totalFormula the total is the
// plain sum of the lines.
type noteSpec struct {
	id           string
	title        string
	sheets       []string
	lines        []lineSpec
	totalFormula []term
}

func dr(ref, label string, accounts ...string) lineSpec {
	return lineSpec{ref: ref, label: label, accounts: accounts}
}

func cr(ref, label string, accounts ...string) lineSpec {
	return lineSpec{ref: ref, label: label, accounts: accounts, credit: true}
}

func drSide(ref, label string, accounts ...string) lineSpec {
	return lineSpec{ref: ref, label: label, accounts: accounts, side: sideDebit}
}

func crSide(ref, label string, accounts ...string) lineSpec {
	return lineSpec{ref: ref, label: label, accounts: accounts, side: sideCredit}
}

func computed(ref, label string, fn func(*buildContext) decimal.Decimal) lineSpec {
	return lineSpec{ref: ref, label: label, compute: fn}
}

var scheduleNotes = []noteSpec{
	{id: "note1", title: "Dettes garanties par des sûretés réelles", lines: []lineSpec{
		cr("empruntsObligataires", "Emprunts obligataires", "161"),
		cr("empruntsEtablissementsCredit", "Emprunts et dettes auprès des établissements de crédit", "162"),
		cr("dettesLocationAcquisition", "Dettes de location-acquisition", "17"),
		cr("autresDettesFinancieres", "Autres emprunts et dettes financières", "163", "164", "165", "166", "167", "168"),
	}},
	{id: "note3b", title: "Biens pris en location-acquisition", lines: []lineSpec{
		cr("creditBailImmobilier", "Crédit-bail immobilier", "172"),
		cr("creditBailMobilier", "Crédit-bail mobilier", "173"),
		cr("locationVente", "Location-vente", "174"),
		cr("autresContrats", "Autres dettes de location-acquisition", "176", "178"),
	}},
	{id: "note3d", title: "Plus-values et moins-values de cession", lines: []lineSpec{
		cr("produitsCession", "Produits des cessions d'immobilisations", "82"),
		dr("valeurComptable", "Valeur comptable des éléments cédés", "81"),
	}, totalFormula: terms(plus("produitsCession"), minus("valeurComptable"))},
	{id: "note3e", title: "Informations sur les réévaluations", lines: []lineSpec{
		cr("ecartsReevaluationLegale", "Ecarts de réévaluation légale", "1061"),
		cr("ecartsReevaluationLibre", "Ecarts de réévaluation libre", "1062"),
	}},
	{id: "note4", title: "Immobilisations financières", lines: []lineSpec{
		dr("titresParticipation", "Titres de participation", "26"),
		dr("prets", "Prêts et créances", "271", "272", "273"),
		dr("depotsCautionnements", "Dépôts et cautionnements versés", "275"),
		dr("titresImmobilises", "Titres immobilisés", "274"),
		dr("autresCreances", "Créances rattachées et autres", "276", "277", "278"),
		cr("depreciations", "Dépréciations des immobilisations financières", "296", "297"),
	}, totalFormula: terms(plus("titresParticipation", "prets", "depotsCautionnements", "titresImmobilises", "autresCreances"), minus("depreciations"))},
	{id: "note5", title: "Actif circulant et dettes circulantes HAO", lines: []lineSpec{
		dr("creancesCessionImmobilisations", "Créances sur cessions d'immobilisations", "485"),
		dr("autresCreancesHAO", "Autres créances HAO", "488"),
		cr("fournisseursInvestissements", "Fournisseurs d'investissements", "481", "482"),
		cr("autresDettesHAO", "Autres dettes HAO", "484", "4998"),
	}, totalFormula: terms(plus("creancesCessionImmobilisations", "autresCreancesHAO"), minus("fournisseursInvestissements", "autresDettesHAO"))},
	{id: "note6", title: "Stocks et encours", lines: []lineSpec{
		dr("marchandises", "Marchandises", "31"),
		dr("matieresPremieres", "Matières premières et fournitures liées", "32"),
		dr("autresApprovisionnements", "Autres approvisionnements", "33"),
		dr("produitsEnCours", "Produits en cours", "34"),
		dr("servicesEnCours", "Services en cours", "35"),
		dr("produitsFinis", "Produits finis", "36"),
		dr("produitsIntermediaires", "Produits intermédiaires et résiduels", "37"),
		dr("stocksEnRoute", "Stocks en cours de route, en consignation ou en dépôt", "38"),
		cr("depreciations", "Dépréciations des stocks", "39"),
	}, totalFormula: terms(plus("marchandises", "matieresPremieres", "autresApprovisionnements", "produitsEnCours", "servicesEnCours", "produitsFinis", "produitsIntermediaires", "stocksEnRoute"), minus("depreciations"))},
	{id: "note7", title: "Clients", lines: []lineSpec{
		dr("clients", "Clients", "411"),
		dr("effetsARecevoir", "Clients, effets à recevoir", "412"),
		dr("chequesImpayes", "Clients, chèques et effets impayés", "413", "414"),
		dr("creancesLitigieuses", "Créances litigieuses ou douteuses", "415", "416"),
		dr("produitsNonFactures", "Clients, produits à recevoir", "418"),
		cr("depreciations", "Dépréciations des comptes clients", "491"),
	}, totalFormula: terms(plus("clients", "effetsARecevoir", "chequesImpayes", "creancesLitigieuses", "produitsNonFactures"), minus("depreciations"))},
	{id: "note8", title: "Autres créances", lines: []lineSpec{
		drSide("personnel", "Personnel", "42"),
		drSide("organismesSociaux", "Organismes sociaux", "43"),
		drSide("etat", "Etat et collectivités publiques", "44"),
		drSide("organismesInternationaux", "Organismes internationaux", "45"),
		drSide("associes", "Associés et groupe", "46"),
		drSide("debiteursDivers", "Débiteurs divers", "47"),
		dr("chargesConstateesAvance", "Charges constatées d'avance", "476"),
	}, totalFormula: plus("personnel", "organismesSociaux", "etat", "organismesInternationaux", "associes", "debiteursDivers")},
	{id: "note9", title: "Titres de placement", lines: []lineSpec{
		dr("titresTresor", "Titres du Trésor et bons de caisse à court terme", "501"),
		dr("actions", "Actions", "502", "503"),
		dr("obligations", "Obligations", "504", "505", "506"),
		dr("autresTitres", "Autres valeurs assimilées", "508"),
		cr("depreciations", "Dépréciations des titres de placement", "590"),
	}, totalFormula: terms(plus("titresTresor", "actions", "obligations", "autresTitres"), minus("depreciations"))},
	{id: "note10", title: "Valeurs à encaisser", lines: []lineSpec{
		dr("effetsEncaisser", "Effets à encaisser", "511"),
		dr("effetsEscompte", "Effets à l'encaissement", "512"),
		dr("chequesEncaisser", "Chèques à encaisser", "513", "514"),
		dr("autresValeurs", "Autres valeurs à encaisser", "515", "518"),
	}},
	{id: "note11", title: "Disponibilités", lines: []lineSpec{
		drSide("banques", "Banques", "52"),
		drSide("etablissementsFinanciers", "Etablissements financiers et assimilés", "53"),
		drSide("instrumentsTresorerie", "Instruments de trésorerie", "54"),
		drSide("caisse", "Caisse", "57"),
		drSide("regiesAvances", "Régies d'avances et virements internes", "58"),
	}},
	{id: "note12", title: "Ecarts de conversion et transferts de charges", lines: []lineSpec{
		dr("ecartsActif", "Ecarts de conversion-Actif", "478"),
		cr("ecartsPassif", "Ecarts de conversion-Passif", "479"),
		cr("transfertsCharges", "Transferts de charges", "781", "787"),
	}, totalFormula: terms(plus("ecartsActif"), minus("ecartsPassif"))},
	{id: "note13", title: "Capital", lines: []lineSpec{
		cr("capitalSouscritAppele", "Capital souscrit, appelé, versé", "1013"),
		cr("capitalSouscritNonAppele", "Capital souscrit, non appelé", "1011", "1012"),
		cr("capitalPersonnel", "Capital personnel et dotations", "102", "103", "104"),
		cr("apporteursNonAppele", "Apporteurs, capital non appelé", "109"),
	}},
	{id: "note14", title: "Primes et réserves", lines: []lineSpec{
		cr("primes", "Primes liées au capital social", "105"),
		cr("ecartsReevaluation", "Ecarts de réévaluation", "106"),
		cr("reserveLegale", "Réserve légale", "111"),
		cr("reservesStatutaires", "Réserves statutaires ou contractuelles", "112"),
		cr("reservesReglementees", "Réserves réglementées", "113"),
		cr("reservesLibres", "Autres réserves", "118"),
		cr("reportANouveau", "Report à nouveau", "12"),
	}},
	{id: "note15a", title: "Subventions et provisions réglementées", lines: []lineSpec{
		cr("subventionsEquipement", "Subventions d'équipement", "141"),
		cr("autresSubventions", "Autres subventions d'investissement", "142", "148"),
		cr("amortissementsDerogatoires", "Amortissements dérogatoires", "151"),
		cr("autresProvisionsReglementees", "Autres provisions réglementées", "152", "153", "154", "155", "156"),
	}},
	{id: "note16b", title: "Engagements de retraite et avantages assimilés", lines: []lineSpec{
		cr("provisionsPensions", "Provisions pour pensions et obligations similaires", "196"),
		cr("autresProvisions", "Autres provisions pour risques et charges", "191", "192", "193", "194", "195", "197", "198"),
	}},
	{id: "note17", title: "Fournisseurs d'exploitation", lines: []lineSpec{
		cr("fournisseurs", "Fournisseurs, dettes en compte", "401"),
		cr("effetsAPayer", "Fournisseurs, effets à payer", "402"),
		cr("fournisseursGroupe", "Fournisseurs, retenues de garantie et groupe", "404", "405"),
		cr("facturesNonParvenues", "Fournisseurs, factures non parvenues", "408"),
		dr("avancesVersees", "Fournisseurs débiteurs, avances versées", "409"),
	}, totalFormula: terms(plus("fournisseurs", "effetsAPayer", "fournisseursGroupe", "facturesNonParvenues"), minus("avancesVersees"))},
	{id: "note18", title: "Dettes fiscales et sociales", lines: []lineSpec{
		crSide("personnel", "Personnel", "42"),
		crSide("organismesSociaux", "Sécurité sociale et organismes sociaux", "43"),
		crSide("etatImpotResultat", "Etat, impôt sur les bénéfices", "441"),
		crSide("etatTaxes", "Etat, autres impôts et taxes", "442", "443", "444", "445", "446", "447", "448", "449"),
	}},
	{id: "note19", title: "Autres dettes et provisions pour risques à court terme", lines: []lineSpec{
		crSide("organismesInternationaux", "Organismes internationaux", "45"),
		crSide("associes", "Associés et groupe", "46"),
		crSide("crediteursDivers", "Créditeurs divers", "47"),
		cr("produitsConstatesAvance", "Produits constatés d'avance", "477"),
		cr("provisionsCourtTerme", "Provisions pour risques à court terme", "499", "599"),
	}, totalFormula: plus("organismesInternationaux", "associes", "crediteursDivers", "provisionsCourtTerme")},
	{id: "note20", title: "Banques, crédits d'escompte et de trésorerie", lines: []lineSpec{
		crSide("escompte", "Crédits d'escompte", "564", "565"),
		crSide("tresorerie", "Crédits de trésorerie", "561", "566"),
		crSide("banquesCreditrices", "Banques, soldes créditeurs", "52"),
	}},
	{id: "note21", title: "Chiffre d'affaires et autres produits", lines: []lineSpec{
		cr("ventesMarchandises", "Ventes de marchandises", "701"),
		cr("ventesProduitsFabriques", "Ventes de produits fabriqués", "702", "703", "704"),
		cr("travauxServices", "Travaux, services vendus", "705", "706"),
		cr("produitsAccessoires", "Produits accessoires", "707"),
		cr("subventionsExploitation", "Subventions d'exploitation", "71"),
		cr("autresProduits", "Autres produits", "75"),
	}},
	{id: "note22", title: "Achats", lines: []lineSpec{
		dr("achatsMarchandises", "Achats de marchandises", "601"),
		dr("achatsMatieres", "Achats de matières premières et fournitures liées", "602"),
		dr("autresAchats", "Autres achats", "604", "605", "608"),
		dr("variationMarchandises", "Variation des stocks de marchandises", "6031"),
		dr("variationMatieres", "Variation des stocks de matières premières", "6032"),
		dr("variationAutres", "Variation des stocks d'autres approvisionnements", "6033"),
	}},
	{id: "note23", title: "Transports", lines: []lineSpec{
		dr("transportsAchats", "Transports sur achats", "612"),
		dr("transportsVentes", "Transports pour le compte de tiers et sur ventes", "613", "614"),
		dr("transportsPersonnel", "Transports du personnel", "616"),
		dr("autresTransports", "Autres frais de transport", "611", "618"),
	}},
	{id: "note24", title: "Services extérieurs", lines: []lineSpec{
		dr("soustraitance", "Sous-traitance générale", "621"),
		dr("locations", "Locations et charges locatives", "622"),
		dr("redevancesLocationAcquisition", "Redevances de location-acquisition", "623"),
		dr("entretien", "Entretien, réparations et maintenance", "624"),
		dr("assurances", "Primes d'assurance", "625"),
		dr("etudes", "Etudes, recherches et documentation", "626"),
		dr("publicite", "Publicité, publications, relations publiques", "627"),
		dr("telecommunications", "Frais de télécommunications", "628"),
		dr("autresServices", "Autres services extérieurs", "63"),
	}},
	{id: "note25", title: "Impôts et taxes", lines: []lineSpec{
		dr("impotsDirects", "Impôts et taxes directs", "641", "642", "643", "644"),
		dr("impotsIndirects", "Impôts et taxes indirects", "645"),
		dr("droitsEnregistrement", "Droits d'enregistrement", "646"),
		dr("penalites", "Pénalités et amendes fiscales", "647"),
		dr("autresImpots", "Autres impôts et taxes", "648"),
	}},
	{id: "note26", title: "Autres charges", lines: []lineSpec{
		dr("pertesCreances", "Pertes sur créances clients et autres débiteurs", "651"),
		dr("quotePartResultats", "Quote-part de résultat sur opérations faites en commun", "652"),
		dr("valeurComptableCessionsCourantes", "Valeur comptable des cessions courantes d'immobilisations", "654"),
		dr("pertesChange", "Pertes de change sur créances et dettes commerciales", "656"),
		dr("penalitesAmendes", "Pénalités et amendes pénales", "657"),
		dr("chargesDiverses", "Charges diverses", "658"),
		dr("provisionsExploitation", "Charges pour dépréciations et provisions à court terme", "659"),
	}},
	{id: "note27a", title: "Charges de personnel", lines: []lineSpec{
		dr("remunerationsNationaux", "Rémunérations directes versées au personnel national", "661"),
		dr("remunerationsNonNationaux", "Rémunérations directes versées au personnel non national", "662"),
		dr("indemnites", "Indemnités forfaitaires versées au personnel", "663"),
		dr("chargesSociales", "Charges sociales", "664"),
		dr("remunerationsExploitant", "Rémunérations et charges sociales de l'exploitant individuel", "666"),
		dr("remunerationsTransferees", "Rémunération transférée de personnel extérieur", "667"),
		dr("autresCharges", "Autres charges sociales", "668"),
	}},
	{id: "note27b", title: "Effectifs, masse salariale et personnel extérieur", lines: []lineSpec{
		computed("effectif", "Effectif moyen", func(ctx *buildContext) decimal.Decimal {
			if ctx.prior {
				return decimal.NewFromInt(int64(ctx.entity.PriorHeadcount))
			}
			return decimal.NewFromInt(int64(ctx.entity.Headcount))
		}),
		dr("masseSalariale", "Masse salariale", "661", "662", "663"),
		dr("chargesSociales", "Charges sociales", "664"),
		dr("personnelExterieur", "Personnel extérieur", "637", "667"),
	}, totalFormula: plus("masseSalariale", "chargesSociales", "personnelExterieur")},
	{id: "note28", title: "Provisions et dépréciations inscrites au bilan", lines: []lineSpec{
		cr("provisionsReglementees", "Provisions réglementées", "15"),
		cr("provisionsRisques", "Provisions pour risques et charges", "19"),
		cr("depreciationsImmobilisations", "Dépréciations des immobilisations", "29"),
		cr("depreciationsStocks", "Dépréciations des stocks", "39"),
		cr("depreciationsTiers", "Dépréciations des comptes de tiers", "49"),
		cr("depreciationsTresorerie", "Dépréciations des comptes de trésorerie", "59"),
	}},
	{id: "note29", title: "Charges et revenus financiers", lines: []lineSpec{
		dr("interetsEmprunts", "Intérêts des emprunts", "671"),
		dr("interetsLocationAcquisition", "Intérêts dans loyers de location-acquisition", "672"),
		dr("escomptesAccordes", "Escomptes accordés", "673"),
		dr("autresInterets", "Autres intérêts", "674"),
		dr("pertesChange", "Pertes de change financières", "676"),
		dr("pertesTitres", "Pertes sur cessions de titres de placement", "677"),
		cr("interetsPrets", "Intérêts de prêts et créances diverses", "771"),
		cr("revenusParticipations", "Revenus de participations", "772"),
		cr("escomptesObtenus", "Escomptes obtenus", "773"),
		cr("revenusPlacements", "Revenus de placement", "774"),
		cr("gainsChange", "Gains de change financiers", "776"),
		cr("gainsTitres", "Gains sur cessions de titres de placement", "777"),
	}, totalFormula: terms(
		plus("interetsPrets", "revenusParticipations", "escomptesObtenus", "revenusPlacements", "gainsChange", "gainsTitres"),
		minus("interetsEmprunts", "interetsLocationAcquisition", "escomptesAccordes", "autresInterets", "pertesChange", "pertesTitres"))},
	{id: "note30", title: "Autres charges et produits HAO", lines: []lineSpec{
		dr("valeurComptableCessions", "Valeurs comptables des cessions d'immobilisations", "81"),
		dr("chargesHAO", "Charges hors activités ordinaires", "83"),
		dr("dotationsHAO", "Dotations hors activités ordinaires", "85"),
		cr("produitsCessions", "Produits des cessions d'immobilisations", "82"),
		cr("produitsHAO", "Produits hors activités ordinaires", "84"),
		cr("reprisesHAO", "Reprises hors activités ordinaires", "86"),
		cr("subventionsEquilibre", "Subventions d'équilibre", "88"),
	}, totalFormula: terms(
		plus("produitsCessions", "produitsHAO", "reprisesHAO", "subventionsEquilibre"),
		minus("valeurComptableCessions", "chargesHAO", "dotationsHAO"))},
	{id: "note31", title: "Répartition du résultat et autres éléments caractéristiques", lines: []lineSpec{
		cr("capitalSocial", "Capital social", "101", "102", "103", "104"),
		cr("resultatNet", "Résultat net", "6", "7", "8"),
		cr("chiffreAffaires", "Chiffre d'affaires hors taxes", "701", "702", "703", "704", "705", "706", "707"),
		cr("dividendes", "Dividendes distribués", "465"),
	}, totalFormula: []term{}},
	{id: "note32", title: "Production de l'exercice", lines: []lineSpec{
		cr("produitsFabriques", "Ventes de produits fabriqués", "702", "703", "704"),
		cr("travauxServices", "Travaux et services vendus", "705", "706"),
		cr("productionImmobilisee", "Production immobilisée", "72"),
		cr("productionStockee", "Production stockée", "73"),
	}},
	{id: "note33", title: "Achats destinés à la production", lines: []lineSpec{
		dr("matieresPremieres", "Matières premières et fournitures liées", "602"),
		dr("variationMatieres", "Variation des stocks de matières premières", "6032"),
		dr("matieresConsommables", "Matières et fournitures consommables", "604"),
		dr("autresAchats", "Autres achats", "605", "608"),
	}},
	{id: "note34", title: "Fiche de synthèse des principaux indicateurs financiers", lines: []lineSpec{
		computed("chiffreAffaires", "Chiffre d'affaires", incomeLine("XB")),
		computed("valeurAjoutee", "Valeur ajoutée", incomeLine("XC")),
		computed("excedentBrutExploitation", "Excédent brut d'exploitation", incomeLine("XD")),
		computed("resultatExploitation", "Résultat d'exploitation", incomeLine("XE")),
		computed("resultatNet", "Résultat net", incomeLine("XI")),
		computed("capitauxPropres", "Capitaux propres", balanceLine("CP")),
		computed("dettesFinancieres", "Dettes financières", balanceLine("DD")),
		computed("capaciteAutofinancement", "Capacité d'autofinancement globale", func(ctx *buildContext) decimal.Decimal {
			is := buildIncomeStatement(ctx)
			return is.Line("XI").N.Add(is.Line("RL").N).Add(is.Line("RN").N).Sub(is.Line("TJ").N).Sub(is.Line("TL").N)
		}),
	}, totalFormula: []term{}},
	{id: "note37", title: "Détermination de l'impôt sur le résultat", lines: []lineSpec{
		dr("impotBenefices", "Impôts sur les bénéfices de l'exercice", "891"),
		dr("rappelsImpots", "Rappels d'impôts sur résultats antérieurs", "892"),
		dr("impotMinimumForfaitaire", "Impôt minimum forfaitaire", "895"),
		cr("degrevements", "Dégrèvements et annulations", "899"),
	}, totalFormula: terms(plus("impotBenefices", "rappelsImpots", "impotMinimumForfaitaire"), minus("degrevements"))},
}

func incomeLine(ref string) func(*buildContext) decimal.Decimal {
	return func(ctx *buildContext) decimal.Decimal {
		return buildIncomeStatement(ctx).Line(ref).N
	}
}

func balanceLine(ref string) func(*buildContext) decimal.Decimal {
	return func(ctx *buildContext) decimal.Decimal {
		bs := buildBalanceSheet(ctx)
		if f, ok := bs.Passif[ref]; ok {
			return f.N
		}
		return bs.asset(ref).Net.N
	}
}

var noteSpecByID = func() map[string]*noteSpec {
	m := make(map[string]*noteSpec, len(scheduleNotes))
	for i := range scheduleNotes {
		m[scheduleNotes[i].id] = &scheduleNotes[i]
	}
	return m
}()

func newScheduleNote(spec *noteSpec) *ScheduleNote {
	return &ScheduleNote{ID: spec.id, Lignes: figureMap(spec.lines)}
}

func buildScheduleNote(spec *noteSpec, ctx *buildContext) *ScheduleNote {
	n := newScheduleNote(spec)
	fillFigures(ctx, spec.lines, n.Lignes)
	n.finalize()
	return n
}

// Kind implements Report
func (n *ScheduleNote) Kind() Kind { return KindScheduleNote }

// finalize sums the lines into the total. A note declaring an empty formula
// has no meaningful total and keeps it at zero.
func (n *ScheduleNote) finalize() {
	spec, ok := noteSpecByID[n.ID]
	if !ok {
		return
	}
	get := func(ref string) decimal.Decimal {
		if f, ok := n.Lignes[ref]; ok && f != nil {
			return f.N
		}
		return decimal.Zero
	}
	switch {
	case spec.totalFormula == nil:
		sum := decimal.Zero
		for _, l := range spec.lines {
			sum = sum.Add(get(l.ref))
		}
		n.Total.N = sum
	default:
		n.Total.N = evalFormula(spec.totalFormula, get)
	}
}

func (n *ScheduleNote) derived(segs []string) bool {
	return len(segs) >= 1 && segs[0] == "total"
}

// Line returns the figure of a line key
func (n *ScheduleNote) Line(key string) Figure {
	if f, ok := n.Lignes[key]; ok && f != nil {
		return *f
	}
	return Figure{}
}

func scheduleNoteCategory(spec *noteSpec) Category {
	return Category{
		ID:     spec.id,
		Title:  spec.title,
		Kind:   KindScheduleNote,
		Sheets: noteSheets(spec.id, spec.title),
		empty:  func(*buildContext) Report { return newScheduleNote(spec) },
		build:  func(ctx *buildContext) Report { return buildScheduleNote(spec, ctx) },
		fields: func() []fieldSpec {
			out := make([]fieldSpec, 0, len(spec.lines)+1)
			for _, l := range spec.lines {
				out = append(out, fieldSpec{path: "lignes." + l.ref, label: l.label, accounts: l.accounts})
			}
			return append(out, fieldSpec{path: "total", label: "Total " + spec.title})
		},
	}
}

// noteSheets returns sheet name patterns for a note: "note 16a", "note16a" and its title
func noteSheets(id, title string) []string {
	number := id[len("note"):]
	return []string{"note " + number, id, title}
}

// noteCategories returns the note categories in numbering order
func noteCategories() []Category {
	order := []string{
		"note1", "note3a", "note3b", "note3c", "note3d", "note3e", "note4", "note5",
		"note6", "note7", "note8", "note9", "note10", "note11", "note12", "note13",
		"note14", "note15a", "note16a", "note16b", "note17", "note18", "note19",
		"note20", "note21", "note22", "note23", "note24", "note25", "note26",
		"note27a", "note27b", "note28", "note29", "note30", "note31", "note32",
		"note33", "note34", "note37",
	}
	out := make([]Category, 0, len(order))
	for _, id := range order {
		switch id {
		case "note3a":
			out = append(out, movementNoteCategory(fixedAssetsNote))
		case "note3c":
			out = append(out, movementNoteCategory(depreciationNote))
		case "note16a":
			out = append(out, debtNoteCategory())
		default:
			out = append(out, scheduleNoteCategory(noteSpecByID[id]))
		}
	}
	return out
}
