package progress

import "github.com/verte-zerg/tuiread/internal/model"

// StuckCutoff is the last sentence id that still sends a stuck reader down
// path A.
const StuckCutoff = 7

// Classify picks the training path from the marking pass.
//
// The first stuck mark is the first one in the collection, which is the order
// marks were recorded in, not the lowest sentence id.
func Classify(marks []model.SentenceMark) model.Path {
	var firstStuck *model.SentenceMark
	understood := 0
	for i := range marks {
		switch marks[i].Kind {
		case model.Stuck:
			if firstStuck == nil {
				firstStuck = &marks[i]
			}
		case model.Understood:
			understood++
		}
	}
	switch {
	case firstStuck != nil && firstStuck.SentenceID <= StuckCutoff:
		return model.PathA
	case firstStuck != nil && understood == 0:
		return model.PathB
	default:
		return model.PathC
	}
}
