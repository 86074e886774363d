package rank

import "time"

// Semantic helpers mapping one category of raw interaction record to a
// weighted, date-adjusted observation. Time-sensitive categories decay
// against the record's most relevant timestamp (last update preferred
// over creation where both exist). Structural relations (connections,
// shared space membership) carry no useful timestamp and are recorded
// at full base weight.

// CommentedOnMine records that userID commented on an activity of mine.
func (u *Influencers) CommentedOnMine(userID string, at time.Time) error {
	return u.addParticipantDecayed(userID, weightCommentedOnMine, at)
}

// RepliedToMyComment records a direct reply to one of my comments.
func (u *Influencers) RepliedToMyComment(userID string, at time.Time) error {
	return u.addParticipantDecayed(userID, weightRepliedToMyComment, at)
}

// MentionedMe records that userID mentioned me in an activity or comment.
func (u *Influencers) MentionedMe(userID string, at time.Time) error {
	return u.addParticipantDecayed(userID, weightMentionedMe, at)
}

// LikedMine records that userID liked an activity of mine.
func (u *Influencers) LikedMine(userID string, at time.Time) error {
	return u.addParticipantDecayed(userID, weightLikedMine, at)
}

// LikedMyComment records that userID liked one of my comments.
func (u *Influencers) LikedMyComment(userID string, at time.Time) error {
	return u.addParticipantDecayed(userID, weightLikedMyComment, at)
}

// CommentedSameAsMe records that userID commented on a thread I also
// commented on.
func (u *Influencers) CommentedSameAsMe(userID string, at time.Time) error {
	return u.addParticipantDecayed(userID, weightCommentedSameAsMe, at)
}

// LikedSameAsMe records that userID liked an object I also liked.
func (u *Influencers) LikedSameAsMe(userID string, at time.Time) error {
	return u.addParticipantDecayed(userID, weightLikedSameAsMe, at)
}

// ConnectedToMe records a confirmed connection.
func (u *Influencers) ConnectedToMe(userID string) error {
	return u.AddParticipant(userID, weightConnectedToMe)
}

// SharesSpaceWithMe records co-membership in a space.
func (u *Influencers) SharesSpaceWithMe(userID string) error {
	return u.AddParticipant(userID, weightSharesSpaceWithMe)
}

// PostedInStream records that I posted an activity in the stream.
func (u *Influencers) PostedInStream(streamID string, at time.Time) error {
	return u.addStreamDecayed(streamID, weightMyPostInStream, at)
}

// CommentedInStream records that I commented in the stream.
func (u *Influencers) CommentedInStream(streamID string, at time.Time) error {
	return u.addStreamDecayed(streamID, weightMyCommentInStream, at)
}

// LikedInStream records that I liked content in the stream.
func (u *Influencers) LikedInStream(streamID string, at time.Time) error {
	return u.addStreamDecayed(streamID, weightMyLikeInStream, at)
}

// MemberOfSpaceStream records membership in the space owning the stream.
func (u *Influencers) MemberOfSpaceStream(streamID string) error {
	return u.AddStream(streamID, weightMySpaceStream)
}

// ViewedStream records a plain view of the stream.
func (u *Influencers) ViewedStream(streamID string, at time.Time) error {
	return u.addStreamDecayed(streamID, weightMyViewOfStream, at)
}

func (u *Influencers) addParticipantDecayed(userID string, base float64, at time.Time) error {
	w, err := AdjustWeightByDate(base, at, u.now)
	if err != nil {
		return err
	}
	return u.AddParticipant(userID, w)
}

func (u *Influencers) addStreamDecayed(streamID string, base float64, at time.Time) error {
	w, err := AdjustWeightByDate(base, at, u.now)
	if err != nil {
		return err
	}
	return u.AddStream(streamID, w)
}
