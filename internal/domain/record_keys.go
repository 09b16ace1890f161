package domain

// Canonical particle record keys read by the selection criteria. Each key is
// strongly typed so a criterion cannot read a counter as a double by
// accident.
var (
	// Muon type flags.

	KeyIsGlobalMuon  = Key[bool]{"isGlobalMuon"}
	KeyIsTrackerMuon = Key[bool]{"isTrackerMuon"}
	KeyIsPFMuon      = Key[bool]{"isPFMuon"}
	KeyIsLooseMuon   = Key[bool]{"isLooseMuon"}

	// KeyOneStationTight is the TMOneStationTight arbitration flag used by
	// the soft selection.
	KeyOneStationTight = Key[bool]{"TMOneStationTight"}

	// KeyInnerTrackHighPurity flags a high-purity inner track.
	KeyInnerTrackHighPurity = Key[bool]{"innerTrackHighPurity"}

	// Track quality.

	KeyNormalizedChi2        = Key[float64]{"NormChi2"}
	KeyChi2LocalPosition     = Key[float64]{"chi2LocalPosition"}
	KeyTrackKink             = Key[float64]{"trkKink"}
	KeySegmentCompatibility  = Key[float64]{"segComp"}
	KeyValidFraction         = Key[float64]{"validFraction"}
	KeyTrackerLayersWithMeas = Key[int32]{"TrackerLayersWithMeas"}
	KeyPixelLayersWithMeas   = Key[int32]{"PixelLayersWithMeas"}
	KeyValidMuonHits         = Key[int32]{"VHitsMuonSys"}
	KeyValidPixelHits        = Key[int32]{"VHitsPixel"}
	KeyMatchedStations       = Key[int32]{"NMatchedStations"}

	// Impact parameters with respect to the primary vertex.

	KeyDxy = Key[float64]{"Dxy"}
	KeyDz  = Key[float64]{"Dz"}

	// Cocktail (TuneP) refit quantities for high-momentum selection.

	KeyValidCocktail                 = Key[bool]{"validCocktail"}
	KeyPtCocktail                    = Key[float64]{"ptCocktail"}
	KeyPtErrorCocktail               = Key[float64]{"ptErrorCocktail"}
	KeyValidPixelHitsCocktail        = Key[int32]{"VHitsPixelCocktail"}
	KeyTrackerLayersWithMeasCocktail = Key[int32]{"TrackerLayersWithMeasCocktail"}
	KeyDxyCocktail                   = Key[float64]{"DxyCocktail"}
	KeyDzCocktail                    = Key[float64]{"DzCocktail"}

	// Isolation sums.

	KeyTrackIso = Key[float64]{"TrkIso"}
	KeyECALIso  = Key[float64]{"ECALIso"}
	KeyHCALIso  = Key[float64]{"HCALIso"}
	KeyGenIso   = Key[float64]{"GenIso"}

	KeyPFIsoR04ChargedHadrons = Key[float64]{"PFIsoR04ChargedHadrons"}
	KeyPFIsoR04NeutralHadrons = Key[float64]{"PFIsoR04NeutralHadrons"}
	KeyPFIsoR04Photons        = Key[float64]{"PFIsoR04Photons"}
	KeyPFIsoR04PU             = Key[float64]{"PFIsoR04PU"}

	KeyPFIsoR03ChargedHadrons = Key[float64]{"PFIsoR03ChargedHadrons"}
	KeyPFIsoR03NeutralHadrons = Key[float64]{"PFIsoR03NeutralHadrons"}
	KeyPFIsoR03Photons        = Key[float64]{"PFIsoR03Photons"}
	KeyPFIsoR03PU             = Key[float64]{"PFIsoR03PU"}
)
