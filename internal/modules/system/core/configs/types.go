package configs

const configKey = "configs"
