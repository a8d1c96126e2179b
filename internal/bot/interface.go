package bot

// Voice is the voice-state view the Discord bot gives commands.
type Voice interface {
	// UserVoiceChannel returns the voice channel userID is connected to.
	UserVoiceChannel(guildID, userID string) (string, bool)
	// HumansInChannel counts non-bot members in a voice channel.
	HumansInChannel(guildID, channelID string) (int, error)
}
