package musicbrainz

func convertArtist(a mbArtist) Artist {
	artist := Artist{
		ID:             a.ID,
		Name:           a.Name,
		SortName:       a.SortName,
		Type:           a.Type,
		Country:        a.Country,
		Disambiguation: a.Disambiguation,
		Score:          a.Score,
	}
	if a.LifeSpan != nil {
		artist.LifeSpan = &LifeSpan{Begin: a.LifeSpan.Begin, End: a.LifeSpan.End, Ended: a.LifeSpan.Ended}
	}
	for _, t := range a.Tags {
		artist.Tags = append(artist.Tags, Tag{Name: t.Name, Count: t.Count})
	}
	artist.ReleaseGroups = convertReleaseGroups(a.ReleaseGroups)
	return artist
}

func convertArtists(in []mbArtist) []Artist {
	out := make([]Artist, 0, len(in))
	for _, a := range in {
		out = append(out, convertArtist(a))
	}
	return out
}

func convertReleaseGroup(rg mbReleaseGroup) ReleaseGroup {
	group := ReleaseGroup{
		ID:               rg.ID,
		Title:            rg.Title,
		PrimaryType:      rg.PrimaryType,
		SecondaryTypes:   rg.SecondaryTypes,
		FirstReleaseDate: rg.FirstReleaseDate,
	}
	for _, credit := range rg.ArtistCredit {
		name := credit.Artist.Name
		if name == "" {
			name = credit.Name
		}
		group.Credits = append(group.Credits, ArtistCredit{ID: credit.Artist.ID, Name: name})
	}
	for _, r := range rg.Releases {
		group.Releases = append(group.Releases, Release{
			ID:         r.ID,
			Title:      r.Title,
			Status:     r.Status,
			Date:       r.Date,
			Country:    r.Country,
			TrackCount: r.TrackCount,
		})
	}
	return group
}

func convertReleaseGroups(in []mbReleaseGroup) []ReleaseGroup {
	if len(in) == 0 {
		return nil
	}
	out := make([]ReleaseGroup, 0, len(in))
	for _, rg := range in {
		out = append(out, convertReleaseGroup(rg))
	}
	return out
}
