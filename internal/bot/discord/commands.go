package discord

import (
	"fmt"
	"strconv"

	"ignis-bot/internal/service/chat"

	"github.com/bwmarrin/discordgo"
)

// applicationCommands переводит таблицу команд в определения slash-команд Discord
func applicationCommands(commands []chat.Command) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(commands))
	for _, cmd := range commands {
		ac := &discordgo.ApplicationCommand{
			Name:        cmd.Name,
			Description: cmd.Description,
		}
		for _, opt := range cmd.Options {
			ac.Options = append(ac.Options, applicationOption(opt))
		}
		out = append(out, ac)
	}
	return out
}

func applicationOption(opt chat.Option) *discordgo.ApplicationCommandOption {
	o := &discordgo.ApplicationCommandOption{
		Name:        opt.Name,
		Description: opt.Description,
		Required:    opt.Required,
		Type:        discordgo.ApplicationCommandOptionString,
	}
	if opt.Kind == chat.OptionInteger {
		minValue := 1.0
		o.Type = discordgo.ApplicationCommandOptionInteger
		o.MinValue = &minValue
	}
	return o
}

// optionArgs достает значения опций как строки, по имени опции
func optionArgs(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	args := make(map[string]string, len(options))
	for _, opt := range options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			args[opt.Name] = opt.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			args[opt.Name] = strconv.FormatInt(opt.IntValue(), 10)
		default:
			args[opt.Name] = fmt.Sprint(opt.Value)
		}
	}
	return args
}

func commandNames(cmds []*discordgo.ApplicationCommand) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}
