package logger

import "log/slog"

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

func Room(id string) slog.Attr {
	return slog.String("room_id", id)
}

func Conn(id string) slog.Attr {
	return slog.String("conn_id", id)
}

func User(id string) slog.Attr {
	return slog.String("user_id", id)
}

func Event(id string) slog.Attr {
	return slog.String("event_id", id)
}
