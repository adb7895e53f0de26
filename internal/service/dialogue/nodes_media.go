package dialogue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// Renderer fields and repo action paths spoken by the media handlers.
// These are automation-bus conventions, not per-room configuration.
const (
	fieldVolume   = "Volume"
	fieldMute     = "Mute"
	fieldPlayMode = "PlayMode"

	actionPlay    = "Play"
	actionEnqueue = "Enqueue"
)

var transportVerbs = []string{"play", "pause", "stop", "next", "previous"}

// titleWord capitalizes a single lowercase ASCII verb for the bus.
func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

// resolveMediaItem finds the spoken name among the room's playlists and,
// when configured, its categories. A nil return was already spoken for.
func resolveMediaItem(c *Controller, name string) *domain.MediaItem {
	media := c.room.MusicData()

	if c.caps.Has(domain.CapPlayLists) {
		if item := media.Playlist(name); item != nil {
			return item
		}
	}
	if c.caps.Has(domain.CapMusicCats) {
		if item := media.Category(name); item != nil {
			return item
		}
	}
	c.sayPoolf(notFoundReplies, name)
	return nil
}

func runMediaPlay(c *Controller) Outcome {
	return startMedia(c, actionPlay, "Okay, playing %s.")
}

func runMediaEnqueue(c *Controller) Outcome {
	return startMedia(c, actionEnqueue, "Okay, %s is queued up.")
}

func startMedia(c *Controller, action, ack string) Outcome {
	if !c.requireCapability(domain.CapMusicData, "music") {
		return OutcomeFailure
	}

	name, ok := c.requireSlot(domain.SlotTarget, domain.ConfidenceMedium,
		domain.RulePlaylist,
		"Which playlist did you want?",
		"the name of a playlist")
	if !ok {
		return OutcomeFailure
	}

	item := resolveMediaItem(c, name)
	if item == nil {
		return OutcomeFailure
	}

	media := c.room.MusicData()
	desc := domain.ActionDescriptor{Moniker: media.RepoMoniker, Path: action}
	if !c.runAction(desc, []string{item.ID}, "the music player") {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf(ack, item.Name))
	return OutcomeSuccess
}

func runMediaTransport(c *Controller) Outcome {
	if !c.requireCapability(domain.CapMusicData, "music") {
		return OutcomeFailure
	}

	verb, ok := c.requireSlot(domain.SlotState, domain.ConfidenceMedium,
		domain.RuleTransport,
		"Should I play, pause, stop, or skip?",
		"a playback command")
	if !ok {
		return OutcomeFailure
	}

	canonical := ""
	for _, v := range transportVerbs {
		if strings.EqualFold(v, verb) {
			canonical = v
			break
		}
	}
	if canonical == "" {
		c.sayPool(tryAgainPrompts)
		return OutcomeFailure
	}

	media := c.room.MusicData()
	desc := domain.ActionDescriptor{Moniker: media.RendererMoniker, Path: titleWord(canonical)}
	if !c.runAction(desc, nil, "the music player") {
		return OutcomeFailure
	}

	c.say("Okay.")
	return OutcomeSuccess
}

func runMediaMute(c *Controller) Outcome {
	if !c.requireCapability(domain.CapMusicData, "music") {
		return OutcomeFailure
	}
	media := c.room.MusicData()

	// "Mute" with no state means mute; "mute off" unmutes.
	value, word := "True", "muted"
	if st := c.tctx.Slot(domain.SlotState); st != nil &&
		domain.AtLeastMedium(st.Confidence) && strings.EqualFold(st.Value, "off") {
		value, word = "False", "unmuted"
	}

	if !c.writeField(media.RendererMoniker, fieldMute, value, "the music player", false) {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Okay, %s.", word))
	return OutcomeSuccess
}

func runMediaVolume(c *Controller) Outcome {
	if !c.requireCapability(domain.CapMusicData, "music") {
		return OutcomeFailure
	}
	media := c.room.MusicData()

	raw, ok := c.requireSlot(domain.SlotNum, domain.ConfidenceHigh,
		domain.RuleNumber,
		"To what volume?",
		"a volume level")
	if !ok {
		return OutcomeFailure
	}

	level, err := strconv.Atoi(raw)
	if err != nil || level < 0 || level > 100 {
		c.say("I need a volume between zero and one hundred.")
		return OutcomeFailure
	}

	if !c.writeField(media.RendererMoniker, fieldVolume, strconv.Itoa(level), "the music player", false) {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Okay, volume is %d.", level))
	return OutcomeSuccess
}

func runMediaPlaylistMode(c *Controller) Outcome {
	if !c.requireCapability(domain.CapMusicData, "music") {
		return OutcomeFailure
	}
	media := c.room.MusicData()

	mode, ok := c.requireSlot(domain.SlotState, domain.ConfidenceMedium,
		domain.RuleTransport,
		"Shuffle, repeat, or normal?",
		"a play mode")
	if !ok {
		return OutcomeFailure
	}

	switch strings.ToLower(mode) {
	case "shuffle", "repeat", "normal":
	default:
		c.sayPool(tryAgainPrompts)
		return OutcomeFailure
	}

	if !c.writeField(media.RendererMoniker, fieldPlayMode, titleWord(mode), "the music player", false) {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Okay, %s mode.", strings.ToLower(mode)))
	return OutcomeSuccess
}
