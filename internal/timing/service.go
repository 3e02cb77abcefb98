package timing

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/pkg/besttime"
)

// Service resolves the timing pattern for a venue, degrading from live
// forecast to location-based fallback to the generic pattern.
type Service struct {
	bt  besttime.Client
	log *zap.Logger
}

// NewService creates a Service. A nil client skips the live forecast and
// goes straight to synthetic patterns.
func NewService(bt besttime.Client) *Service {
	return &Service{
		bt:  bt,
		log: zap.L().With(zap.String("component", "timing")),
	}
}

// PatternFor returns the best available pattern for a venue. API failures
// other than venue-not-found degrade to the generic pattern rather than
// failing the run; context cancellation still propagates.
func (s *Service) PatternFor(ctx context.Context, venueName, venueAddress string) (model.TimingPattern, error) {
	if s.bt == nil || venueName == "" {
		return LocationPatternOrGeneric(venueName, venueAddress), nil
	}

	f, err := s.bt.Forecast(ctx, venueName, venueAddress)
	switch {
	case err == nil:
		return Corrected(f), nil
	case eris.Is(err, besttime.ErrVenueNotFound):
		s.log.Debug("venue unknown to forecast provider, using location fallback",
			zap.String("venue", venueName))
		return LocationPattern(venueName, venueAddress), nil
	case ctx.Err() != nil:
		return model.TimingPattern{}, eris.Wrap(ctx.Err(), "timing: forecast")
	default:
		s.log.Warn("forecast failed, using generic pattern",
			zap.String("venue", venueName), zap.Error(err))
		return GenericPattern(), nil
	}
}

// PatternForVenue rebuilds the pattern for a venue BestTime already knows,
// reading the stored week forecast instead of paying for a new one.
func (s *Service) PatternForVenue(ctx context.Context, venueID string) (model.TimingPattern, error) {
	if s.bt == nil {
		return model.TimingPattern{}, eris.New("timing: no forecast client")
	}
	if venueID == "" {
		return model.TimingPattern{}, eris.New("timing: venue id is required")
	}

	f, err := s.bt.VenueWeek(ctx, venueID)
	if err != nil {
		return model.TimingPattern{}, eris.Wrapf(err, "timing: venue %s", venueID)
	}
	return Corrected(f), nil
}

// LocationPatternOrGeneric picks the location fallback when a venue name is
// known and the generic pattern otherwise.
func LocationPatternOrGeneric(venueName, venueAddress string) model.TimingPattern {
	if venueName == "" {
		return GenericPattern()
	}
	return LocationPattern(venueName, venueAddress)
}
