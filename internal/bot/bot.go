package bot

import (
	"fmt"

	"exile-bot/internal/config"
	"exile-bot/internal/logger"
	"exile-bot/internal/platform"

	"github.com/bwmarrin/discordgo"
)

// gateway intents the bot needs; members and message content are privileged
// and must also be enabled in the developer portal
const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsMessageContent

// BotService owns the gateway connection.
type BotService struct {
	Session  *discordgo.Session
	Platform *platform.Discord
}

// Initialize creates the discordgo session. Nothing connects until Start.
func Initialize(cfg *config.Config) (*BotService, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	s, err := discordgo.New("Bot " + cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	s.Identify.Intents = intents
	s.StateEnabled = true
	s.State.TrackMembers = true
	s.State.TrackRoles = true
	s.State.TrackChannels = true

	setupDiscordLogger(s, cfg.Logger.Level)

	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Infof("Logged in as %s, %d guild(s) available", r.User.String(), len(r.Guilds))
	})
	s.AddHandler(func(s *discordgo.Session, d *discordgo.Disconnect) {
		logger.Warning("Disconnected from the gateway, discordgo will reconnect")
	})

	return &BotService{
		Session:  s,
		Platform: platform.NewDiscord(s),
	}, nil
}

// Start opens the gateway connection.
func (b *BotService) Start() error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening gateway connection: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *BotService) Stop() error {
	return b.Session.Close()
}

// UserTag returns the logged in bot user, or "" before the gateway is ready.
func (b *BotService) UserTag() string {
	if b.Session.State == nil || b.Session.State.User == nil {
		return ""
	}
	return b.Session.State.User.String()
}

// setupDiscordLogger routes discordgo's own log output through the bot log.
func setupDiscordLogger(s *discordgo.Session, level string) {
	switch logger.ParseLevel(level) {
	case logger.LevelDebug:
		s.LogLevel = discordgo.LogDebug
	case logger.LevelInfo:
		s.LogLevel = discordgo.LogInformational
	case logger.LevelWarning:
		s.LogLevel = discordgo.LogWarning
	default:
		s.LogLevel = discordgo.LogError
	}

	discordgo.Logger = func(msgL, caller int, format string, a ...any) {
		msg := "discordgo: " + fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			logger.Error(msg)
		case discordgo.LogWarning:
			logger.Warning(msg)
		case discordgo.LogInformational:
			logger.Info(msg)
		default:
			logger.Debug(msg)
		}
	}
}
