package cmd

var envMapString = map[*string]boundEnvVar[string]{
	&cfg.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode used when no subcommand is given. Possible values are 'service' and 'lambda'",
		Short:       ptr("m"),
	},
	&cfg.Webhook.VerifyToken: {
		Name:        "verify-token",
		Description: "The secret shared with the messaging platform, compared against hub.verify_token during the subscription handshake",
	},
	&cfg.Webhook.TokenSource: {
		Name:        "verify-token-source",
		Description: "Where the verify token is read from. Supported values are 'env' and 'ssm'",
	},
	&cfg.Webhook.SSMKey: {
		Name:        "verify-token-ssm-key",
		Description: "The SSM parameter key holding the verify token when the token source is 'ssm'",
	},
	&cfg.Webhook.Path: {
		Name:        "webhook-path",
		Description: "The path serving the verification handshake and notifications",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&cfg.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       ptr("V"),
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&cfg.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default InfoLevel)",
		Short:       ptr("v"),
	},
}
