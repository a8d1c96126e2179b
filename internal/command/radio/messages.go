package radio

const (
	msgNotDJ           = "❌ Você precisa ter o cargo de DJ para usar este comando."
	msgNoChannelConfig = "❌ Configuração de canais não encontrada."
	msgNoBotChannel    = "❌ O canal \"bot\" não foi encontrado na configuração."
	msgWrongChannel    = "❌ Este comando só pode ser usado no canal <#%s>."
	msgNotInVoice      = "❌ Você precisa estar em um canal de voz para usar este comando."
	msgNotOwner        = "❌ Apenas <@%s> pode controlar a rádio nesta sessão."
	msgNoRadios        = "❌ Nenhuma rádio encontrada. Contate um administrador para configurar rádios."
	msgNoCountryRadios = "❌ Nenhuma rádio encontrada para %s."
	msgCountryNotFound = "❌ País não encontrado: %s"
	msgStationNotFound = "❌ Rádio não encontrada (índice %d)"
	msgNoStationURL    = "❌ URL inválida para a rádio %s"
	msgPlayError       = "❌ Erro ao reproduzir rádio: %v"
	msgNothingPlaying  = "❌ Não há rádio em execução no momento"
	msgStopped         = "✅ Rádio desconectada com sucesso!"
	msgStopError       = "❌ Erro ao desconectar rádio: %v"
	msgComponentError  = "❌ Ocorreu um erro ao processar sua seleção."
	msgIdleStopped     = "📻 A rádio foi desligada automaticamente por inatividade."

	promptCountry      = "📻 Selecione um país para ver as rádios disponíveis:"
	promptStation      = "📻 Selecione uma rádio de %s:"
	promptStationPaged = "📻 Selecione uma rádio de %s (página %d/%d):"
)
