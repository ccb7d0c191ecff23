package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BaseApplication is the letter frame. The model is instructed to keep the
// opening and closing paragraphs verbatim and rewrite only the body.
const BaseApplication = `Sehr geehrte Damen und Herren,

Softwareentwicklung begeistert mich – vor allem dann, wenn ich damit echte Mehrwerte für Nutzer schaffen kann.

Als ausgebildeter IT-Kaufmann mit technischer Zusatzqualifikation zum IT-Assistenten und einem laufenden Studium der Wirtschaftsinformatik verbinde ich fundiertes technisches Wissen mit wirtschaftlichem Verständnis. Aktuell bin ich bei der CIB software GmbH als Produktverantwortlicher tätig – dem Unternehmen, bei dem ich bereits erfolgreich die Ausbildung absolviert habe.

Im Studium steht die Programmiersprache Python im Fokus. Ergänzt wird dieses Wissen durch praktische Erfahrung im Frontend-Bereich, insbesondere mit Angular und TypeScript, die im Rahmen eines Praktikums bei MicroNova vertieft wurde.

So ergibt sich ein solides Fundament für die Fullstack-Webentwicklung – sowohl im Backend als auch im Frontend.

Gerne überzeuge ich Sie in einem persönlichen Gespräch von meiner Motivation und meinen Fähigkeiten.

Mit freundlichen Grüßen`

// CandidateSkills stands in for real résumé analysis. Uploaded résumés are
// only validated, never parsed into skills (see POST /resume).
var CandidateSkills = []string{
	"Python", "Angular", "TypeScript", "Java", "Hibernate",
	"Scrum", "Produktverantwortung", "Software Architektur",
	"Wirtschaftsinformatik", "IT-Kaufmann", "KI",
}

// Sampling temperatures per stage. The two JSON-contract stages run colder
// than the free-text letter stage.
const (
	TemperatureAnalysis = 0.3
	TemperatureMatching = 0.3
	TemperatureLetter   = 0.5
)

func JobAnalysisPrompt(jobDescription string) string {
	return fmt.Sprintf(`Analysiere diese Stellenanzeige und extrahiere die wichtigsten Anforderungen:

%s

Gib mir eine strukturierte Antwort mit:
1. Technische Anforderungen (Programmiersprachen, Frameworks, Tools)
2. Fachliche Anforderungen (Erfahrung, Qualifikationen)
3. Soft Skills
4. Branchenspezifische Kenntnisse

Antwort als JSON:
{
  "technical_requirements": ["requirement1", "requirement2"],
  "professional_requirements": ["requirement1", "requirement2"],
  "soft_skills": ["skill1", "skill2"],
  "industry_knowledge": ["knowledge1", "knowledge2"]
}`, jobDescription)
}

func SkillMatchPrompt(requirements JobRequirements, skills []string) string {
	reqJSON, _ := json.MarshalIndent(requirements, "", "  ")
	return fmt.Sprintf(`Vergleiche die Stellenanforderungen mit den vorhandenen Skills:

Stellenanforderungen:
%s

Vorhandene Skills:
%s

Gib mir eine Analyse als JSON:
{
  "matched_skills": ["skill1", "skill2"],
  "missing_skills": ["skill1", "skill2"],
  "relevant_experiences": ["experience1", "experience2"]
}`, reqJSON, strings.Join(skills, ", "))
}

func ApplicationPrompt(requirements JobRequirements, matchedSkills []string) string {
	reqJSON, _ := json.MarshalIndent(requirements, "", "  ")
	matchedJSON, _ := json.MarshalIndent(matchedSkills, "", "  ")
	return fmt.Sprintf(`Erstelle ein individualisiertes Anschreiben basierend auf:

Basis-Anschreiben:
%s

Stellenanforderungen:
%s

Passende Skills:
%s

Regeln:
- Behalte den ersten und letzten Absatz EXAKT bei
- Ändere nur den mittleren Teil
- Erwähne nur relevante Erfahrungen:
  * Wenn Frontend/Angular gebraucht wird: "Frontend Entwicklung Angular bei MicroNova"
  * Wenn Backend/Java gebraucht wird: "Backend Java mit Hibernate bei MicroNova" oder "Java in der Ausbildung bei CIB"
  * Wenn Produktverantwortung gebraucht wird: "als Product Owner Web Technologien (Angular) und Backend Java"
  * Wenn Scrum gebraucht wird: "Scrum Methoden"
  * Wenn KI gebraucht wird: erwähne KI-Erfahrung
- Passe den Text natürlich an die Stelle an
- Schreibe professionell und überzeugend

Gib mir das komplette Anschreiben zurück.`, BaseApplication, reqJSON, matchedJSON)
}
