package commands

// DefaultDefinitions is the built-in FURIA fan table, used when no commands file is present.
var DefaultDefinitions = []Definition{
	{
		Phrase:  "Próximos jogos",
		Literal: "O próximo confronto da equipe FURIA acontecerá contra a equipe Coming soon.\n" +
			"De acordo com o horário do torneio Coming soon, o confronto será em Coming soon.\n\n" +
			"Vamos com tudo, FURIA! 🐾🔥",
	},
	{
		Phrase:  "Jogadores",
		Literal: "Atualmente, os jogadores da FURIA de CS:GO são:\n" +
			" FalleN 👑 (Gabriel Toledo)\n" +
			" yuurih 💥 (Yuri Boian)\n" +
			" KSCERATO 💪 (Kaike Cerato)\n" +
			" YEKINDAR 🐅 (Mareks Gaļinskis)\n" +
			" molodoy 🛡️ (Danil Golubenko)\n\n" +
			" O treinador da equipe é sidde (Sidnei Macedo).",
	},
	{
		Phrase:  "Curiosidades",
		Literal: "Melhor Organização🏆: A FURIA foi eleita a Melhor Organização de eSports no Prêmio eSports Brasil " +
			"por dois anos consecutivos, em 2020 e 2021, um reconhecimento do seu impacto e profissionalismo no cenário🐾🔥.",
	},
	{
		Phrase:  "Frases",
		Literal: "\"A FURIA VEIO PRA VENCEEEEEEER🐾🔥\", grito de torcida muito utilizado para expressar a alegria dos torcedores!",
	},
}

func Default() *Table {
	t, err := New(DefaultDefinitions)
	if err != nil {
		panic("commands: invalid default table: " + err.Error())
	}
	return t
}
